// Command dpapibridge converts data to and from a host-key-protected base64
// blob.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/vaultsandbox/dpapibridge/internal/bridge"
	"github.com/vaultsandbox/dpapibridge/internal/cli"
	"github.com/vaultsandbox/dpapibridge/internal/config"
	"github.com/vaultsandbox/dpapibridge/internal/input"
	"github.com/vaultsandbox/dpapibridge/internal/logging"
	"github.com/vaultsandbox/dpapibridge/internal/protect"
)

// Config holds I/O configuration for the CLI.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// StdinRedirected reports that Stdin is a pipe or file.
	StdinRedirected bool
	Getenv          func(string) string
}

// DefaultConfig returns a Config using the process streams and environment.
func DefaultConfig() *Config {
	return &Config{
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		StdinRedirected: !term.IsTerminal(int(os.Stdin.Fd())),
		Getenv:          os.Getenv,
	}
}

// protectorFactory creates the protection backend. Tests replace it.
var protectorFactory = func(cfg *config.Config, logger *slog.Logger) (protect.Protector, error) {
	return protect.New(protect.Options{
		Backend:       cfg.Backend,
		UserKeyDir:    cfg.UserKeyDir,
		MachineKeyDir: cfg.MachineKeyDir,
		Logger:        logger,
	})
}

// exitFunc is the function called to exit. Tests replace it.
var exitFunc = os.Exit

func run(args []string, cfg *Config) error {
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	if len(args) > 0 {
		args = args[1:]
	}
	// Help and usage errors must not depend on the configuration.
	req, help, err := cli.Parse(args, cfg.Stdout, nil)
	if err != nil || help {
		return err
	}

	settings, err := config.Load(getenv)
	if err != nil {
		return &bridge.Error{Kind: bridge.KindInternal, Message: "configuration: " + err.Error(), Err: err}
	}
	logger := logging.New(settings.LogLevel, settings.LogFormat, stderr)
	if settings.EnvFile != "" {
		logger.Debug("env file loaded", "path", settings.EnvFile)
	}
	logger.Debug("arguments parsed", "mode", req.Mode.String(), "base64", req.Base64, "inline_input", req.Input != nil)

	protector, err := protectorFactory(settings, logger)
	if err != nil {
		return &bridge.Error{Kind: bridge.KindInternal, Message: "protection backend: " + err.Error(), Err: err}
	}

	b := &bridge.Bridge{
		Protector: protector,
		Input: &input.Resolver{
			Stdin:      cfg.Stdin,
			Redirected: cfg.StdinRedirected,
			Logger:     logger,
		},
		Stdout: cfg.Stdout,
		Logger: logger,
	}
	return b.Run(req)
}

// exitCode maps an error returned by run to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var be *bridge.Error
	if errors.As(err, &be) {
		return be.ExitCode()
	}
	return 1
}

func fatal(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitFunc(code)
}
