package steps

import (
	"runtime"
	"testing"
)

func TestDefaultPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch, want string
	}{
		{"linux", "amd64", "Linux-x64"},
		{"linux", "386", "Linux-x86"},
		{"linux", "arm", "Linux-ARM"},
		{"linux", "arm64", "Linux-ARM"},
		{"windows", "386", "Windows-x86"},
		{"windows", "amd64", "Windows-x64"},
		{"darwin", "amd64", "Mac-x64"},
		{"darwin", "arm64", "Mac-ARM"},
		{"plan9", "amd64", ""},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			if got := DefaultPlatform(tt.goos, tt.goarch); got != tt.want {
				t.Errorf("DefaultPlatform(%q, %q) = %q, want %q", tt.goos, tt.goarch, got, tt.want)
			}
		})
	}
}

func TestTemplate_DefaultPlatformFunc(t *testing.T) {
	tmpl, err := parseText("p", "{{ .env.PLATFORM | default defaultPlatform }}")
	if err != nil {
		t.Fatal(err)
	}
	got, err := tmpl.render(map[string]any{"env": map[string]string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := DefaultPlatform(runtime.GOOS, runtime.GOARCH); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	got, err = tmpl.render(map[string]any{"env": map[string]string{"PLATFORM": "Windows-x86"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Windows-x86" {
		t.Errorf("expected explicit platform, got %q", got)
	}
}
