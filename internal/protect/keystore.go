package protect

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/vaultsandbox/dpapibridge/internal/crypto"
)

const keyFileName = "master.key"

// KeyStore protects data with one ML-KEM-768 keypair per scope, each kept in
// its own directory as <dir>/master.key. The key for a scope is created on
// the first Protect in that scope; Unprotect never creates keys.
type KeyStore struct {
	UserDir    string
	MachineDir string
	Logger     *slog.Logger
}

// NewKeyStore returns a KeyStore rooted at the given directories.
func NewKeyStore(userDir, machineDir string, logger *slog.Logger) *KeyStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &KeyStore{UserDir: userDir, MachineDir: machineDir, Logger: logger}
}

// Protect seals clear to the key of scope, creating that key if needed.
func (ks *KeyStore) Protect(clear []byte, scope Scope, description string, entropy []byte) ([]byte, error) {
	kp, err := ks.loadOrCreateKey(scope)
	if err != nil {
		return nil, &Error{Op: "protect", Err: err}
	}

	blob, err := crypto.Seal(kp.PublicKey, byte(scope), description, entropy, clear)
	if err != nil {
		return nil, &Error{Op: "protect", Err: err}
	}
	return blob, nil
}

// Unprotect opens a blob produced by Protect on this host.
func (ks *KeyStore) Unprotect(blob, entropy []byte) ([]byte, string, error) {
	sealed, err := crypto.ParseSealed(blob)
	if err != nil {
		return nil, "", &Error{Op: "unprotect", Err: err}
	}

	scope := Scope(sealed.Scope)
	kp, err := ks.loadKey(scope)
	if err != nil {
		return nil, "", &Error{Op: "unprotect", Err: err}
	}

	clear, err := crypto.Open(sealed, kp, entropy)
	if err != nil {
		return nil, "", &Error{Op: "unprotect", Err: err}
	}
	return clear, sealed.Description, nil
}

// KeyPath returns the key file location for scope.
func (ks *KeyStore) KeyPath(scope Scope) (string, error) {
	var dir string
	switch scope {
	case ScopeUser:
		dir = ks.UserDir
	case ScopeMachine:
		dir = ks.MachineDir
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidScope, scope)
	}
	if dir == "" {
		return "", fmt.Errorf("no key directory configured for %s scope", scope)
	}
	return filepath.Join(dir, keyFileName), nil
}

func (ks *KeyStore) loadKey(scope Scope) (*crypto.Keypair, error) {
	path, err := ks.KeyPath(scope)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no %s key at %s", ErrKeyNotFound, scope, path)
	}
	if err != nil {
		return nil, err
	}

	if scope == ScopeUser {
		ks.checkPermissions(path)
	}

	secret, err := crypto.FromBase64URL(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	kp, err := crypto.KeypairFromSecretKey(secret)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return kp, nil
}

func (ks *KeyStore) loadOrCreateKey(scope Scope) (*crypto.Keypair, error) {
	kp, err := ks.loadKey(scope)
	if !errors.Is(err, ErrKeyNotFound) {
		return kp, err
	}

	path, err := ks.KeyPath(scope)
	if err != nil {
		return nil, err
	}

	kp, err = crypto.GenerateKeypair()
	if err != nil {
		return nil, fmt.Errorf("generate %s key: %w", scope, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		// Another invocation created it first.
		return ks.loadKey(scope)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.WriteString(crypto.ToBase64URL(kp.SecretKey) + "\n"); err != nil {
		os.Remove(path)
		return nil, err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}

	ks.Logger.Info("created protection key", "scope", scope.String(), "path", path)
	return kp, nil
}

func (ks *KeyStore) checkPermissions(path string) {
	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm()&0o077 != 0 {
		ks.Logger.Warn("user protection key file is accessible by other users", "path", path, "mode", info.Mode().Perm().String())
	}
}
