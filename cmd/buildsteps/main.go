package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/systemstart/buildsteps/pkg/api"
	"github.com/systemstart/buildsteps/pkg/build"
	"github.com/systemstart/buildsteps/pkg/logging"
	"github.com/systemstart/buildsteps/pkg/processing"
)

var version = "dev"

const (
	_ = iota
	exitUsage
	exitLoggingError
	exitDotenvError
	exitRecipeNotFound
	exitLoadRecipeFailed
	exitRecipeVersionMismatch
	exitConfiguration
	exitStepFailed
	exitToolErrors
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	boot := scanBootstrap(args)

	if err := logging.Initialize(os.Stderr, boot.loggingType, boot.logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		return exitLoggingError
	}

	if err := includeEnv(boot.envFile); err != nil {
		slog.Error("failed to load env file", "filename", boot.envFile, "error", err)
		return exitDotenvError
	}

	recipePath := boot.recipe
	if recipePath == "" {
		found, err := processing.FindRecipe(".")
		switch {
		case err == nil:
			recipePath = found
		case !boot.helpOrVersion:
			slog.Error("no recipe given and none found", "error", err)
			return exitRecipeNotFound
		}
	}

	var engine *processing.Engine
	if recipePath != "" {
		recipe, err := api.LoadRecipe(recipePath)
		if err != nil {
			slog.Error("failed to load recipe", "filename", recipePath, "error", err)
			return exitLoadRecipeFailed
		}
		if err := recipe.CheckRequires(api.FormatVersion); err != nil {
			slog.Error("recipe requires a different format version", "filename", recipePath, "error", err)
			return exitRecipeVersionMismatch
		}
		engine, err = processing.NewEngine(recipe)
		if err != nil {
			slog.Error("invalid recipe", "filename", recipePath, "error", err)
			return exitConfiguration
		}
	}

	cmd, err := newRootCmd(engine, boot.recipe)
	if err != nil {
		slog.Error("invalid recipe options", "error", err)
		return exitConfiguration
	}
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	var stepErr *build.StepError
	var usageErr *usageError
	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	case errors.Is(err, build.ErrConfiguration):
		slog.Error("configuration error", "error", err)
		return exitConfiguration
	case errors.As(err, &stepErr):
		slog.Error("build failed", "step", stepErr.Step, "error", stepErr.Err)
		return exitStepFailed
	default:
		slog.Error("build failed", "error", err)
		return exitToolErrors
	}
}

func includeEnv(filename string) error {
	if filename != "" {
		return godotenv.Load(filename)
	}
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
	return nil
}
