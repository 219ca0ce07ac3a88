package cli

import (
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	lazyhttp "github.com/wesleyorama2/lazyapi/http"
)

func newDataCmd(opts *rootOptions) *cobra.Command {
	var (
		key   string
		query string
	)

	cmd := &cobra.Command{
		Use:   "data URL|PATH",
		Short: "GET a JSON object and print one of its keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, path := opts.target(args[0])

			var code *gojq.Code
			if query != "" {
				q, err := gojq.Parse(query)
				if err != nil {
					return fmt.Errorf("invalid jq query: %w", err)
				}
				if code, err = gojq.Compile(q); err != nil {
					return fmt.Errorf("invalid jq query: %w", err)
				}
			}

			client, err := opts.newClient(baseURL, nil)
			if err != nil {
				return err
			}
			formatter, err := opts.formatter(cmd)
			if err != nil {
				return err
			}

			var value interface{}
			if opts.async {
				value, err = client.AsyncGetData(cmd.Context(), path, key).Wait()
			} else {
				value, err = client.GetData(cmd.Context(), path, key)
			}
			if err != nil {
				return err
			}
			if value == nil {
				return fmt.Errorf("key %q not found", keyOrDefault(key))
			}

			out := cmd.OutOrStdout()
			if code == nil {
				fmt.Fprintln(out, formatter.FormatValue(value))
				return nil
			}

			iter := code.RunWithContext(cmd.Context(), value)
			for {
				v, ok := iter.Next()
				if !ok {
					return nil
				}
				if err, isErr := v.(error); isErr {
					return fmt.Errorf("jq: %w", err)
				}
				fmt.Fprintln(out, formatter.FormatValue(v))
			}
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", lazyhttp.DefaultDataKey, "Top-level key to extract")
	cmd.Flags().StringVar(&query, "jq", "", "jq expression applied to the extracted value")
	return cmd
}

func keyOrDefault(key string) string {
	if key == "" {
		return lazyhttp.DefaultDataKey
	}
	return key
}
