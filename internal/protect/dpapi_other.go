//go:build !windows

package protect

import (
	"fmt"
	"log/slog"
)

func newDPAPI(*slog.Logger) (Protector, error) {
	return nil, fmt.Errorf("%w: dpapi", ErrUnsupported)
}
