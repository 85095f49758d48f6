//go:build windows

package protect

import (
	"log/slog"
	"unsafe"

	"golang.org/x/sys/windows"
)

// DPAPI protects data with CryptProtectData and CryptUnprotectData. The key
// scope is encoded in the blob by Windows itself.
type DPAPI struct {
	Logger *slog.Logger
}

func newDPAPI(logger *slog.Logger) (Protector, error) {
	return &DPAPI{Logger: logger}, nil
}

// Protect calls CryptProtectData. ScopeMachine adds CRYPTPROTECT_LOCAL_MACHINE.
func (d *DPAPI) Protect(clear []byte, scope Scope, description string, entropy []byte) ([]byte, error) {
	var flags uint32 = windows.CRYPTPROTECT_UI_FORBIDDEN
	switch scope {
	case ScopeUser:
	case ScopeMachine:
		flags |= windows.CRYPTPROTECT_LOCAL_MACHINE
	default:
		return nil, &Error{Op: "protect", Err: ErrInvalidScope}
	}

	name, err := windows.UTF16PtrFromString(description)
	if err != nil {
		return nil, &Error{Op: "protect", Err: err}
	}

	var out windows.DataBlob
	if err := windows.CryptProtectData(dataBlob(clear), name, entropyBlob(entropy), 0, nil, flags, &out); err != nil {
		return nil, &Error{Op: "protect", Err: err}
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(out.Data)))

	d.Logger.Debug("CryptProtectData succeeded", "scope", scope.String(), "blob_bytes", out.Size)
	return copyBlob(&out), nil
}

// Unprotect calls CryptUnprotectData and returns the stored description.
func (d *DPAPI) Unprotect(blob, entropy []byte) ([]byte, string, error) {
	var name *uint16
	var out windows.DataBlob
	err := windows.CryptUnprotectData(dataBlob(blob), &name, entropyBlob(entropy), 0, nil, windows.CRYPTPROTECT_UI_FORBIDDEN, &out)
	if err != nil {
		return nil, "", &Error{Op: "unprotect", Err: err}
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(out.Data)))

	var description string
	if name != nil {
		description = windows.UTF16PtrToString(name)
		windows.LocalFree(windows.Handle(unsafe.Pointer(name)))
	}

	return copyBlob(&out), description, nil
}

// dataBlob points a DATA_BLOB at b.
func dataBlob(b []byte) *windows.DataBlob {
	if len(b) == 0 {
		return &windows.DataBlob{}
	}
	return &windows.DataBlob{Size: uint32(len(b)), Data: &b[0]}
}

// entropyBlob is dataBlob for the optional entropy parameter, which is
// omitted entirely when empty.
func entropyBlob(b []byte) *windows.DataBlob {
	if len(b) == 0 {
		return nil
	}
	return dataBlob(b)
}

func copyBlob(b *windows.DataBlob) []byte {
	if b.Data == nil || b.Size == 0 {
		return []byte{}
	}
	return append([]byte(nil), unsafe.Slice(b.Data, b.Size)...)
}
