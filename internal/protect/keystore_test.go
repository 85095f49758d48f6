package protect

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/vaultsandbox/dpapibridge/internal/crypto"
)

func newTestKeyStore(t *testing.T) *KeyStore {
	t.Helper()
	return NewKeyStore(filepath.Join(t.TempDir(), "user"), filepath.Join(t.TempDir(), "machine"), nil)
}

func TestKeyStore_RoundTrip(t *testing.T) {
	ks := newTestKeyStore(t)

	tests := []struct {
		name  string
		clear []byte
		scope Scope
	}{
		{"user text", []byte("hello"), ScopeUser},
		{"machine text", []byte("hello"), ScopeMachine},
		{"binary", []byte{0x00, 0xff, 0x10}, ScopeUser},
		{"empty", []byte{}, ScopeMachine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := ks.Protect(tt.clear, tt.scope, DefaultDescription, nil)
			if err != nil {
				t.Fatalf("Protect() error = %v", err)
			}

			clear, desc, err := ks.Unprotect(blob, nil)
			if err != nil {
				t.Fatalf("Unprotect() error = %v", err)
			}
			if !bytes.Equal(clear, tt.clear) {
				t.Errorf("Unprotect() = %x, want %x", clear, tt.clear)
			}
			if desc != DefaultDescription {
				t.Errorf("description = %q, want %q", desc, DefaultDescription)
			}
		})
	}
}

func TestKeyStore_CreatesKeyOnFirstProtect(t *testing.T) {
	ks := newTestKeyStore(t)

	path, err := ks.KeyPath(ScopeUser)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("key file should not exist yet, stat err = %v", err)
	}

	if _, err := ks.Protect([]byte("x"), ScopeUser, "", nil); err != nil {
		t.Fatalf("Protect() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("key file not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Errorf("key file mode = %v, want 0600", info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	secret, err := crypto.FromBase64URL(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("key file is not base64url: %v", err)
	}
	if len(secret) != crypto.MLKEMSecretKeySize {
		t.Errorf("secret key size = %d, want %d", len(secret), crypto.MLKEMSecretKeySize)
	}

	machinePath, _ := ks.KeyPath(ScopeMachine)
	if _, err := os.Stat(machinePath); !os.IsNotExist(err) {
		t.Error("machine key should not be created by a user-scope protect")
	}
}

func TestKeyStore_ReusesExistingKey(t *testing.T) {
	ks := newTestKeyStore(t)

	blob1, err := ks.Protect([]byte("one"), ScopeUser, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	blob2, err := ks.Protect([]byte("two"), ScopeUser, "", nil)
	if err != nil {
		t.Fatal(err)
	}

	s1, _ := crypto.ParseSealed(blob1)
	s2, _ := crypto.ParseSealed(blob2)
	if s1.KeyID != s2.KeyID {
		t.Error("second protect used a different key")
	}
}

func TestKeyStore_UnprotectNeverCreatesKey(t *testing.T) {
	producer := newTestKeyStore(t)
	blob, err := producer.Protect([]byte("secret"), ScopeMachine, "", nil)
	if err != nil {
		t.Fatal(err)
	}

	consumer := newTestKeyStore(t)
	_, _, err = consumer.Unprotect(blob, nil)
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	var perr *Error
	if !errors.As(err, &perr) || perr.Op != "unprotect" {
		t.Errorf("expected *Error with Op unprotect, got %#v", err)
	}

	path, _ := consumer.KeyPath(ScopeMachine)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Unprotect created a key file")
	}
}

func TestKeyStore_ForeignKey(t *testing.T) {
	producer := newTestKeyStore(t)
	blob, err := producer.Protect([]byte("secret"), ScopeUser, "", nil)
	if err != nil {
		t.Fatal(err)
	}

	other := newTestKeyStore(t)
	if _, err := other.Protect([]byte("init"), ScopeUser, "", nil); err != nil {
		t.Fatal(err)
	}

	_, _, err = other.Unprotect(blob, nil)
	if !errors.Is(err, crypto.ErrKeyMismatch) {
		t.Errorf("expected ErrKeyMismatch, got %v", err)
	}
}

func TestKeyStore_TamperedBlob(t *testing.T) {
	ks := newTestKeyStore(t)
	blob, err := ks.Protect([]byte("secret"), ScopeUser, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	blob[len(blob)-1] ^= 0x80

	if _, _, err := ks.Unprotect(blob, nil); !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestKeyStore_GarbageBlob(t *testing.T) {
	ks := newTestKeyStore(t)
	if _, _, err := ks.Unprotect([]byte("hello"), nil); !errors.Is(err, crypto.ErrInvalidBlob) {
		t.Errorf("expected ErrInvalidBlob, got %v", err)
	}
}

func TestKeyStore_InvalidScope(t *testing.T) {
	ks := newTestKeyStore(t)
	if _, err := ks.Protect([]byte("x"), Scope(9), "", nil); !errors.Is(err, ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope, got %v", err)
	}
}

func TestKeyStore_MissingDirectory(t *testing.T) {
	ks := NewKeyStore("", "", nil)
	if _, err := ks.Protect([]byte("x"), ScopeUser, "", nil); err == nil {
		t.Error("expected error when no user key directory is configured")
	}
}

func TestKeyStore_CorruptKeyFile(t *testing.T) {
	ks := newTestKeyStore(t)
	path, _ := ks.KeyPath(ScopeUser)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not a key\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := ks.Protect([]byte("x"), ScopeUser, "", nil); err == nil {
		t.Error("expected error for corrupt key file")
	}
}
