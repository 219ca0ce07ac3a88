package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	lazyhttp "github.com/wesleyorama2/lazyapi/http"
)

// readArg returns the argument, or stdin when it is "-".
func readArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func newEncodeCmd() *cobra.Command {
	var gzip bool
	cmd := &cobra.Command{
		Use:   "encode TEXT|-",
		Short: "Base64-encode text, optionally gzipping it first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readArg(cmd, args[0])
			if err != nil {
				return err
			}
			out := lazyhttp.EncodeBase64(text)
			if gzip {
				if out, err = lazyhttp.EncodeGzipBase64(text); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&gzip, "gzip", "z", false, "Gzip before encoding")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var gzip bool
	cmd := &cobra.Command{
		Use:   "decode TEXT|-",
		Short: "Decode base64 text, optionally gunzipping it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readArg(cmd, args[0])
			if err != nil {
				return err
			}
			decode := lazyhttp.DecodeBase64
			if gzip {
				decode = lazyhttp.DecodeGzipBase64
			}
			out, err := decode(strings.TrimSpace(text))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&gzip, "gzip", "z", false, "Gunzip after decoding")
	return cmd
}
