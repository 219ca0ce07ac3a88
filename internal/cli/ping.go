package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	lazyhttp "github.com/wesleyorama2/lazyapi/http"
	"github.com/wesleyorama2/lazyapi/internal/output"
	"github.com/wesleyorama2/lazyapi/metrics"
)

func newPingCmd(opts *rootOptions) *cobra.Command {
	var (
		minStatus int
		maxStatus int
		count     int
		interval  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ping URL|PATH",
		Short: "Check that an endpoint answers with a healthy status",
		Long: `Ping issues GET requests and checks each status code. With --min and
--max the status must fall in [min, max); with only --min it must be
above min; otherwise it must be below --max (default 300).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			baseURL, path := opts.target(args[0])

			rec := metrics.NewRecorder()
			client, err := opts.newClient(baseURL, rec)
			if err != nil {
				return err
			}
			formatter, err := opts.formatter(cmd)
			if err != nil {
				return err
			}

			po := lazyhttp.PingOptions{MinStatus: minStatus, MaxStatus: maxStatus}
			mode := lazyhttp.ModeSync
			if opts.async {
				mode = lazyhttp.ModeAsync
			}

			out := cmd.OutOrStdout()
			noColor := opts.noColor || opts.format != "text"
			unhealthy := 0
			for i := 0; i < count; i++ {
				if i > 0 && interval > 0 {
					select {
					case <-cmd.Context().Done():
						return cmd.Context().Err()
					case <-time.After(interval):
					}
				}

				var ok bool
				var err error
				if mode == lazyhttp.ModeAsync {
					ok, err = client.AsyncPing(cmd.Context(), path, po).Wait()
				} else {
					ok, err = client.Ping(cmd.Context(), path, po)
				}
				switch {
				case err != nil:
					unhealthy++
					fmt.Fprintf(out, "%s %s: %v\n", output.ErrorIcon(noColor), path, err)
				case !ok:
					unhealthy++
					fmt.Fprintf(out, "%s %s: unhealthy\n", output.ErrorIcon(noColor), path)
				default:
					fmt.Fprintf(out, "%s %s: ok\n", output.SuccessIcon(noColor), path)
				}
			}

			if count > 1 {
				fmt.Fprint(out, formatter.FormatStats(rec.Snapshot(string(mode))))
			}
			if unhealthy > 0 {
				return fmt.Errorf("%d of %d pings failed", unhealthy, count)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&minStatus, "min", 0, "Lowest accepted status")
	cmd.Flags().IntVar(&maxStatus, "max", 0, "Status ceiling (exclusive, default 300)")
	cmd.Flags().IntVarP(&count, "count", "c", 1, "Number of pings to send")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Pause between pings")
	return cmd
}
