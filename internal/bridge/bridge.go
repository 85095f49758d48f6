// Package bridge runs the Encrypt and Decrypt flows.
//
// Each flow moves through the same states:
//
//	Start -> InputResolved -> (Base64Decoded) -> GatewayInvoked -> OutputEmitted
//
// and any failure ends the flow with a single *Error. Nothing is written to
// standard output or to the output file before every earlier step succeeded.
package bridge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/vaultsandbox/dpapibridge/internal/crypto"
	"github.com/vaultsandbox/dpapibridge/internal/input"
	"github.com/vaultsandbox/dpapibridge/internal/protect"
)

// Bridge wires a Protector to an input Resolver and standard output.
type Bridge struct {
	Protector protect.Protector
	Input     *input.Resolver
	Stdout    io.Writer
	// Description is stored with protected blobs. Empty means
	// protect.DefaultDescription.
	Description string
	Logger      *slog.Logger
}

// Run dispatches req to its flow. The mode is checked before any input is read.
func (b *Bridge) Run(req *Request) error {
	switch req.Mode {
	case ModeEncrypt:
		return b.Encrypt(req)
	case ModeDecrypt:
		return b.Decrypt(req)
	default:
		return UsageError(ErrModeNotSet)
	}
}

// Encrypt protects the input and prints the blob as one base64 line. With
// req.Base64 the input is base64 text that is decoded first.
func (b *Bridge) Encrypt(req *Request) error {
	logger := b.logger().With("mode", ModeEncrypt.String())

	raw, err := b.resolve(req)
	if err != nil {
		return err
	}

	clear := raw
	if req.Base64 {
		clear, err = crypto.FromBase64(string(raw))
		if err != nil {
			return &Error{Kind: KindFormat, Message: "input data cannot be read as base64", Err: err}
		}
		logger.Debug("base64 input decoded", "bytes", len(clear))
	}

	scope := req.Scope
	if scope == 0 {
		scope = protect.ScopeUser
	}

	blob, err := b.Protector.Protect(clear, scope, b.description(), nil)
	if err != nil {
		return &Error{Kind: KindGateway, Err: err}
	}
	logger.Debug("data protected", "scope", scope.String(), "blob_bytes", len(blob))

	return b.writeLine(crypto.ToBase64(blob))
}

// Decrypt decodes the base64 input, unprotects it and emits the clear data
// to req.Output or standard output.
func (b *Bridge) Decrypt(req *Request) error {
	logger := b.logger().With("mode", ModeDecrypt.String())

	raw, err := b.resolve(req)
	if err != nil {
		return err
	}

	blob, err := crypto.FromBase64(string(raw))
	if err != nil {
		return &Error{Kind: KindFormat, Message: "cannot base64-decode input", Err: err}
	}

	clear, description, err := b.Protector.Unprotect(blob, nil)
	if err != nil {
		return &Error{Kind: KindGateway, Err: err}
	}
	logger.Debug("data unprotected", "bytes", len(clear), "description", description)

	if req.Output != "" {
		data := clear
		if req.Base64 {
			data = []byte(crypto.ToBase64(clear))
		}
		if err := writeFileAtomic(req.Output, data); err != nil {
			return &Error{Kind: KindOutput, Message: fmt.Sprintf("cannot write output file %s: %v", req.Output, err), Err: err}
		}
		logger.Debug("output file written", "path", req.Output, "bytes", len(data))
		return b.writeLine("output saved to " + req.Output)
	}

	if req.Base64 {
		return b.writeLine(crypto.ToBase64(clear))
	}
	if !utf8.Valid(clear) {
		return &Error{Kind: KindFormat, Err: ErrNotUTF8}
	}
	return b.writeLine(string(clear))
}

func (b *Bridge) resolve(req *Request) ([]byte, error) {
	raw, err := b.Input.Resolve(req.Input)
	if errors.Is(err, input.ErrNoInput) {
		return nil, &Error{Kind: KindInputUnavailable, Err: err}
	}
	if err != nil {
		return nil, &Error{Kind: KindInternal, Err: err}
	}
	return raw, nil
}

// writeLine emits s and a newline in a single write.
func (b *Bridge) writeLine(s string) error {
	if _, err := io.WriteString(b.Stdout, s+"\n"); err != nil {
		return &Error{Kind: KindOutput, Message: "cannot write to standard output: " + err.Error(), Err: err}
	}
	return nil
}

func (b *Bridge) description() string {
	if b.Description == "" {
		return protect.DefaultDescription
	}
	return b.Description
}

func (b *Bridge) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}
