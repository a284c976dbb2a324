package build

import (
	"slices"
	"testing"
)

func TestMatches(t *testing.T) {
	env := map[string]string{
		"OH_PLATFORM":          "Linux-x64",
		"MSBUILDCONFIGURATION": "Debug",
		"EMPTY":                "",
	}

	tests := []struct {
		name       string
		conditions []Condition
		want       bool
	}{
		{"no conditions", nil, true},
		{"single match", []Condition{{"OH_PLATFORM": "Linux-x64"}}, true},
		{"single mismatch", []Condition{{"OH_PLATFORM": "Windows-x86"}}, false},
		{"and all match", []Condition{{"OH_PLATFORM": "Linux-x64", "MSBUILDCONFIGURATION": "Debug"}}, true},
		{"and one mismatch", []Condition{{"OH_PLATFORM": "Linux-x64", "MSBUILDCONFIGURATION": "Release"}}, false},
		{"unset variable", []Condition{{"PLATFORM": "Linux-x64"}}, false},
		{"unset variable against empty", []Condition{{"PLATFORM": ""}}, false},
		{"set empty value", []Condition{{"EMPTY": ""}}, true},
		{"no prefix matching", []Condition{{"OH_PLATFORM": "Linux"}}, false},
		{"case sensitive", []Condition{{"OH_PLATFORM": "linux-x64"}}, false},
		{
			"or with second matching",
			[]Condition{
				{"OH_PLATFORM": "Windows-x86"},
				{"OH_PLATFORM": "Linux-x64"},
				{"OH_PLATFORM": "Linux-ARM"},
			},
			true,
		},
		{
			"or none matching",
			[]Condition{
				{"OH_PLATFORM": "Windows-x86"},
				{"OH_PLATFORM": "Windows-x64", "MSBUILDCONFIGURATION": "Debug"},
				{"OH_PLATFORM": "Linux-x64", "MSBUILDCONFIGURATION": "Release"},
			},
			false,
		},
		{
			"or of ands with one full match",
			[]Condition{
				{"OH_PLATFORM": "Linux-x64", "MSBUILDCONFIGURATION": "Release"},
				{"OH_PLATFORM": "Windows-x64", "MSBUILDCONFIGURATION": "Debug"},
				{"OH_PLATFORM": "Linux-x64", "MSBUILDCONFIGURATION": "Debug"},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.conditions, env); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.conditions, got, tt.want)
			}
		})
	}
}

func TestCondition_String(t *testing.T) {
	c := Condition{"OH_PLATFORM": "Linux-x64", "DEBUG": "1"}
	if got := c.String(); got != "DEBUG=1&OH_PLATFORM=Linux-x64" {
		t.Errorf("unexpected string %q", got)
	}
}

func TestMissingKeys(t *testing.T) {
	env := map[string]string{"A": "1"}
	got := MissingKeys([]Condition{{"A": "1", "C": "x"}, {"B": "2", "C": "y"}}, env)
	if !slices.Equal(got, []string{"B", "C"}) {
		t.Errorf("unexpected missing keys %q", got)
	}
}
