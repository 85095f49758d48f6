package bridge

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind_ExitCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInternal, 1},
		{KindUsage, 2},
		{KindInputUnavailable, 3},
		{KindFormat, 4},
		{KindGateway, 5},
		{KindOutput, 6},
		{Kind(42), 1},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("underlying")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message wins", &Error{Kind: KindFormat, Message: "bad input", Err: cause}, "bad input"},
		{"falls back to cause", &Error{Kind: KindGateway, Err: cause}, "underlying"},
		{"kind only", &Error{Kind: KindOutput}, "output error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", UsageError(ErrModeNotSet))

	if !errors.Is(err, ErrModeNotSet) {
		t.Error("errors.Is should find ErrModeNotSet")
	}

	var be *Error
	if !errors.As(err, &be) {
		t.Fatal("errors.As should find *Error")
	}
	if be.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", be.ExitCode())
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(&Error{Kind: KindGateway}); got != KindGateway {
		t.Errorf("KindOf(gateway) = %v", got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf(plain) = %v, want internal", got)
	}
	if got := KindOf(nil); got != KindInternal {
		t.Errorf("KindOf(nil) = %v, want internal", got)
	}
}

func TestMode_String(t *testing.T) {
	tests := map[Mode]string{
		ModeUnset:   "unset",
		ModeEncrypt: "encrypt",
		ModeDecrypt: "decrypt",
		Mode(9):     "mode(9)",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(m), got, want)
		}
	}
}
