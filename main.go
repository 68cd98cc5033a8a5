package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/knucklebones-backend/internal"
	"github.com/rocketscienceinc/knucklebones-backend/internal/config"
)

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	path, err := configPath(os.Args[1:], os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	conf := config.MustLoad(path)
	logger := initLogger(conf)
	logger.Info("loaded config", "path", path)

	if err = app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

const (
	configEnv  = "KNUCKLEBONES_CONFIG"
	configFile = "config.yml"
)

// configPath - picks the config file: the -config flag, then KNUCKLEBONES_CONFIG, then config.yml in the working directory.
func configPath(args []string, lookupEnv func(string) (string, bool)) (string, error) {
	flags := flag.NewFlagSet("knucklebones", flag.ContinueOnError)
	path := flags.String("config", "", "path to the config file")

	if err := flags.Parse(args); err != nil {
		return "", fmt.Errorf("failed to parse flags: %w", err)
	}

	if *path != "" {
		return *path, nil
	}

	if env, ok := lookupEnv(configEnv); ok && env != "" {
		return env, nil
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return filepath.Join(baseDir, configFile), nil
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
