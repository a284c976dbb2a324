package main

import "testing"

func TestScanBootstrap(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bootstrap
	}{
		{
			"defaults",
			nil,
			bootstrap{loggingType: defaultLoggingType, logLevel: defaultLogLevel},
		},
		{
			"separate values",
			[]string{"--recipe", "ci/build.yaml", "--log-level", "debug", "--steps", "+publish"},
			bootstrap{recipe: "ci/build.yaml", loggingType: defaultLoggingType, logLevel: "debug"},
		},
		{
			"equals and short forms",
			[]string{"-f=build.yaml", "--env-file=ci.env", "--logging-type=json", "-t", "Linux-x64"},
			bootstrap{recipe: "build.yaml", envFile: "ci.env", loggingType: "json", logLevel: defaultLogLevel},
		},
		{
			"short with separate value",
			[]string{"-f", "other.yaml"},
			bootstrap{recipe: "other.yaml", loggingType: defaultLoggingType, logLevel: defaultLogLevel},
		},
		{
			"value starting with f",
			[]string{"--steps", "-fetch"},
			bootstrap{loggingType: defaultLoggingType, logLevel: defaultLogLevel},
		},
		{
			"glued short recipe ignored",
			[]string{"-fci.yaml"},
			bootstrap{loggingType: defaultLoggingType, logLevel: defaultLogLevel},
		},
		{
			"stops at double dash",
			[]string{"--", "--recipe", "x.yaml"},
			bootstrap{loggingType: defaultLoggingType, logLevel: defaultLogLevel},
		},
		{
			"help",
			[]string{"--help"},
			bootstrap{loggingType: defaultLoggingType, logLevel: defaultLogLevel, helpOrVersion: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scanBootstrap(tt.args); got != tt.want {
				t.Errorf("scanBootstrap(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}
