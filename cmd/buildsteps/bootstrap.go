package main

import (
	"strings"
)

// bootstrap holds the flags needed before the recipe options can be defined.
type bootstrap struct {
	recipe        string
	envFile       string
	loggingType   string
	logLevel      string
	helpOrVersion bool
}

// scanBootstrap picks the bootstrap flags out of args without rejecting
// recipe options it does not know yet. Cobra parses args again later.
func scanBootstrap(args []string) bootstrap {
	b := bootstrap{loggingType: defaultLoggingType, logLevel: defaultLogLevel}
	targets := map[string]*string{
		"--" + flagRecipe:      &b.recipe,
		"-" + flagRecipeShort:  &b.recipe,
		"--" + flagEnvFile:     &b.envFile,
		"--" + flagLoggingType: &b.loggingType,
		"--" + flagLogLevel:    &b.logLevel,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		switch arg {
		case "-h", "--help", "--version":
			b.helpOrVersion = true
			continue
		}

		// The glued -fPATH form is not recognised: "-fetch" may be a value.
		name, value, hasValue := strings.Cut(arg, "=")
		dst, ok := targets[name]
		if !ok {
			continue
		}
		if hasValue {
			*dst = value
			continue
		}
		if i+1 < len(args) {
			i++
			*dst = args[i]
		}
	}
	return b
}
