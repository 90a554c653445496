package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variables read after the dotenv file is loaded. They supply
// defaults only; an explicitly set flag always wins.
const (
	envConfigPath = "STAGESIM_CONFIG"
	envLogLevel   = "STAGESIM_LOG"
)

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is an error only when the
// user named it explicitly.
func loadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			logrus.Debugf("No env file at %s", path)
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	logrus.Debugf("Loaded env file %s", path)
	return nil
}

// applyEnvDefaults fills the config path and log level from the environment
// for flags the user did not set.
func applyEnvDefaults(changed func(string) bool) {
	if v, ok := os.LookupEnv(envConfigPath); ok && !changed("config") {
		configPath = v
	}
	if v, ok := os.LookupEnv(envLogLevel); ok && !changed("log") {
		logLevel = v
	}
}
