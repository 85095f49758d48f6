// Package cli turns process arguments into a bridge.Request.
package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vaultsandbox/dpapibridge/internal/bridge"
	"github.com/vaultsandbox/dpapibridge/internal/protect"
)

const long = `dpapibridge protects data with a key held by this host and turns it into a
base64 blob, or turns such a blob back into the original data.

Input is taken from --input or, when that is absent, read from standard input.
Encrypted output is always a single base64 line.

Examples:
  echo secret | dpapibridge --encrypt > secret.txt
  dpapibridge --decrypt < secret.txt
  dpapibridge -d -b -o key.bin < key.txt`

type flags struct {
	encrypt bool
	decrypt bool
	input   string
	base64  bool
	output  string
	machine bool
}

// Parse parses args (without the program name). It returns showHelp when
// usage was printed to out and nothing else should run. Every returned error
// is a *bridge.Error of kind bridge.KindUsage.
func Parse(args []string, out io.Writer, logger *slog.Logger) (req *bridge.Request, showHelp bool, err error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var f flags
	cmd := &cobra.Command{
		Use:                   "dpapibridge (--encrypt | --decrypt) [flags]",
		Short:                 "Protect data with a host key and convert it to and from base64",
		Long:                  long,
		Args:                  cobra.ArbitraryArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		CompletionOptions:     cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, positional []string) error {
			if len(positional) > 0 {
				logger.Debug("ignoring positional arguments", "count", len(positional))
			}
			r, err := f.request(cmd, logger)
			if err != nil {
				return err
			}
			req = r
			return nil
		},
	}
	cmd.SetArgs(normalize(args))
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)

	fs := cmd.Flags()
	fs.SortFlags = false
	fs.BoolVarP(&f.encrypt, "encrypt", "e", false, "encrypt the input")
	fs.BoolVarP(&f.decrypt, "decrypt", "d", false, "decrypt the input")
	fs.StringVarP(&f.input, "input", "i", "", "use `VALUE` as input instead of standard input")
	fs.BoolVarP(&f.base64, "base64", "b", false, "encrypt: input is base64; decrypt: output is base64")
	fs.StringVarP(&f.output, "output", "o", "", "decrypt: write the data to `PATH` instead of standard output")
	fs.BoolVarP(&f.machine, "machine", "m", false, "encrypt: use the machine key instead of the user key")
	fs.BoolP("help", "h", false, "show this help (also -?)")

	if err := cmd.Execute(); err != nil {
		var be *bridge.Error
		if errors.As(err, &be) {
			return nil, false, be
		}
		return nil, false, bridge.UsageError(err)
	}
	if req == nil {
		// cobra handled --help without calling RunE.
		return nil, true, nil
	}
	return req, false, nil
}

func (f *flags) request(cmd *cobra.Command, logger *slog.Logger) (*bridge.Request, error) {
	req := &bridge.Request{
		Base64: f.base64,
		Output: f.output,
		Scope:  protect.ScopeUser,
	}

	switch {
	case f.encrypt && f.decrypt:
		return nil, bridge.UsageError(bridge.ErrConflictingModes)
	case f.encrypt:
		req.Mode = bridge.ModeEncrypt
	case f.decrypt:
		req.Mode = bridge.ModeDecrypt
	default:
		return nil, bridge.UsageError(bridge.ErrModeNotSet)
	}

	if cmd.Flags().Changed("input") {
		v := f.input
		req.Input = &v
	}
	if f.machine {
		req.Scope = protect.ScopeMachine
	}

	if req.Mode == bridge.ModeEncrypt && req.Output != "" {
		logger.Debug("--output has no effect when encrypting", "output", req.Output)
	}
	if req.Mode == bridge.ModeDecrypt && f.machine {
		logger.Debug("--machine has no effect when decrypting; the blob names its scope")
	}
	return req, nil
}

// normalize rewrites -? to --help. Arguments after "--" are left alone.
func normalize(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, a := range out {
		if a == "--" {
			break
		}
		if a == "-?" {
			out[i] = "--help"
		}
	}
	return out
}
