package protect

import (
	"fmt"
	"log/slog"
)

// Backend names a Protector implementation.
type Backend string

const (
	// BackendAuto uses DPAPI where it exists and the key store elsewhere.
	BackendAuto Backend = "auto"
	// BackendDPAPI uses the Windows Data Protection API.
	BackendDPAPI Backend = "dpapi"
	// BackendKeyStore uses file-backed ML-KEM keys.
	BackendKeyStore Backend = "keystore"
)

// ParseBackend validates a backend name. The empty string means BackendAuto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendDPAPI, BackendKeyStore:
		return b, nil
	default:
		return "", fmt.Errorf("unknown protection backend %q (want auto, dpapi or keystore)", s)
	}
}

// Options configures New.
type Options struct {
	Backend       Backend
	UserKeyDir    string
	MachineKeyDir string
	Logger        *slog.Logger
}

// New returns the Protector selected by opts.
func New(opts Options) (Protector, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch opts.Backend {
	case BackendAuto, "":
		if p, err := newDPAPI(logger); err == nil {
			logger.Debug("using protection backend", "backend", BackendDPAPI)
			return p, nil
		}
		logger.Debug("using protection backend", "backend", BackendKeyStore)
		return NewKeyStore(opts.UserKeyDir, opts.MachineKeyDir, logger), nil
	case BackendDPAPI:
		return newDPAPI(logger)
	case BackendKeyStore:
		return NewKeyStore(opts.UserKeyDir, opts.MachineKeyDir, logger), nil
	default:
		return nil, fmt.Errorf("unknown protection backend %q", opts.Backend)
	}
}
