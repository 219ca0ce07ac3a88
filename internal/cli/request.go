package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	lazyhttp "github.com/wesleyorama2/lazyapi/http"
	"github.com/wesleyorama2/lazyapi/internal/output"
)

var bodyVerbs = map[string]bool{"post": true, "put": true, "patch": true, "delete": true}

func newVerbCmd(opts *rootOptions, verb string) *cobra.Command {
	var (
		data     string
		jsonData string
		query    []string
		form     []string
	)

	cmd := &cobra.Command{
		Use:   verb + " URL|PATH",
		Short: fmt.Sprintf("Make a %s request", strings.ToUpper(verb)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, path := opts.target(args[0])

			reqOpts, err := requestOptions(query, form, data, jsonData)
			if err != nil {
				return err
			}

			formatter, err := opts.formatter(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			method := strings.ToUpper(verb)
			if opts.verbose && opts.format == "text" {
				fmt.Fprint(out, formatter.FormatRequest(lazyhttp.NewRequest(method, path, reqOpts...), baseURL))
			}

			client, err := opts.newClient(baseURL, nil)
			if err != nil {
				return err
			}

			var res lazyhttp.Result
			if opts.async {
				res, err = client.AsyncDo(cmd.Context(), method, path, reqOpts...).Wait()
			} else {
				res, err = client.Do(cmd.Context(), lazyhttp.ModeSync, method, path, reqOpts...)
			}
			if err != nil {
				return err
			}

			printResult(out, formatter, res)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Query parameter key=value (can be used multiple times)")
	if bodyVerbs[verb] {
		cmd.Flags().StringVarP(&data, "data", "d", "", "Data to send in the request body")
		cmd.Flags().StringVarP(&jsonData, "json", "j", "", "JSON data to send in the request body")
		cmd.Flags().StringArrayVarP(&form, "form", "F", nil, "Form field key=value (can be used multiple times)")
		cmd.MarkFlagsMutuallyExclusive("data", "json", "form")
	}
	return cmd
}

func requestOptions(query, form []string, data, jsonData string) ([]lazyhttp.RequestOption, error) {
	var reqOpts []lazyhttp.RequestOption

	q, err := parsePairs(query, "query parameter")
	if err != nil {
		return nil, err
	}
	if len(q) > 0 {
		reqOpts = append(reqOpts, lazyhttp.WithQueryValues(q))
	}

	switch {
	case len(form) > 0:
		f, err := parsePairs(form, "form field")
		if err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(f))
		for k := range f {
			fields[k] = f.Get(k)
		}
		reqOpts = append(reqOpts, lazyhttp.WithForm(fields))
	case jsonData != "":
		if !json.Valid([]byte(jsonData)) {
			return nil, fmt.Errorf("--json is not valid JSON")
		}
		reqOpts = append(reqOpts,
			lazyhttp.WithBody(jsonData),
			lazyhttp.WithHeader("Content-Type", "application/json"))
	case data != "":
		reqOpts = append(reqOpts, lazyhttp.WithBody(data))
	}
	return reqOpts, nil
}

// printResult prints an envelope through the formatter, or a raw response
// as status line plus body.
func printResult(w io.Writer, formatter output.FormatProvider, res lazyhttp.Result) {
	switch r := res.(type) {
	case *lazyhttp.Response:
		fmt.Fprint(w, formatter.FormatResponse(r))
	case *resty.Response:
		fmt.Fprintln(w, r.Status())
		fmt.Fprintln(w, string(r.Body()))
	default:
		fmt.Fprintln(w, res.StatusCode())
		fmt.Fprintln(w, res.String())
	}
}
