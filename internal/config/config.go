// Package config loads dpapibridge settings from the environment and an
// optional env file.
//
// Every setting is read from a DPAPIBRIDGE_* environment variable. Values not
// present in the environment are looked up in the env file named by
// DPAPIBRIDGE_ENV_FILE, or dpapibridge.env in the user config directory when
// that variable is unset. A missing default env file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"

	"github.com/vaultsandbox/dpapibridge/internal/logging"
	"github.com/vaultsandbox/dpapibridge/internal/protect"
)

// Environment variables.
const (
	EnvFile          = "DPAPIBRIDGE_ENV_FILE"
	EnvBackend       = "DPAPIBRIDGE_BACKEND"
	EnvUserKeyDir    = "DPAPIBRIDGE_USER_KEY_DIR"
	EnvMachineKeyDir = "DPAPIBRIDGE_MACHINE_KEY_DIR"
	EnvLogLevel      = "DPAPIBRIDGE_LOG_LEVEL"
	EnvLogFormat     = "DPAPIBRIDGE_LOG_FORMAT"
)

const appDir = "dpapibridge"

// userConfigDir is swapped in tests.
var userConfigDir = os.UserConfigDir

// Config holds the resolved settings.
type Config struct {
	Backend       protect.Backend
	UserKeyDir    string
	MachineKeyDir string
	LogLevel      slog.Level
	LogFormat     string
	// EnvFile is the env file that was read, or "" if none was.
	EnvFile string
}

// Load resolves the configuration. getenv is usually os.Getenv.
func Load(getenv func(string) string) (*Config, error) {
	fileVals, envFile, err := readEnvFile(getenv)
	if err != nil {
		return nil, err
	}

	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fileVals[key]
	}

	cfg := &Config{
		UserKeyDir:    lookup(EnvUserKeyDir),
		MachineKeyDir: lookup(EnvMachineKeyDir),
		LogFormat:     lookup(EnvLogFormat),
		EnvFile:       envFile,
	}

	if cfg.Backend, err = protect.ParseBackend(lookup(EnvBackend)); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvBackend, err)
	}
	if cfg.LogLevel, err = logging.ParseLevel(lookup(EnvLogLevel)); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return nil, fmt.Errorf("%s: invalid log format %q: must be 'text' or 'json'", EnvLogFormat, cfg.LogFormat)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	if cfg.UserKeyDir == "" {
		if dir, err := userConfigDir(); err == nil {
			cfg.UserKeyDir = filepath.Join(dir, appDir, "keys")
		}
	}
	if cfg.MachineKeyDir == "" {
		cfg.MachineKeyDir = defaultMachineKeyDir(getenv)
	}

	return cfg, nil
}

func readEnvFile(getenv func(string) string) (map[string]string, string, error) {
	path := getenv(EnvFile)
	explicit := path != ""
	if !explicit {
		dir, err := userConfigDir()
		if err != nil {
			return nil, "", nil
		}
		path = filepath.Join(dir, appDir, appDir+".env")
	}

	vals, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("read env file %s: %w", path, err)
	}
	return vals, path, nil
}

func defaultMachineKeyDir(getenv func(string) string) string {
	if runtime.GOOS == "windows" {
		programData := getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, appDir, "keys")
	}
	return filepath.Join("/var/lib", appDir, "keys")
}
