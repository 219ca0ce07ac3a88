package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/lazyapi/config"
	"github.com/wesleyorama2/lazyapi/internal/output"
)

var version = "0.1.0"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	baseURL    string
	headers    []string
	timeout    time.Duration
	envFiles   []string
	configFile string
	async      bool
	raw        bool
	trace      bool
	format     string
	noColor    bool
	verbose    bool
	debug      bool

	logger *slog.Logger
	source config.Source
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "lazyapi",
		Short:   "A lazy REST client with sensible defaults",
		Version: version,
		Long: `lazyapi issues REST calls with connection settings taken from HTTPX_*
environment keys, wraps every response in an envelope and offers a few
shortcuts: ping a health endpoint, pull a key out of a JSON body, or
encode and decode base64/gzip payloads.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", "", "Base URL prepended to request paths")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "HTTP headers to include (can be used multiple times)")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 0, "Request timeout (defaults to HTTPX_TIMEOUT or 30s)")
	flags.StringArrayVar(&opts.envFiles, "env-file", nil, "Load environment variables from a .env file")
	flags.StringVar(&opts.configFile, "config", "", "Read HTTPX_* keys from a yaml, json or toml file")
	flags.BoolVar(&opts.async, "async", false, "Send requests through the async handle")
	flags.BoolVar(&opts.raw, "raw", false, "Print the raw transport response without the envelope")
	flags.BoolVar(&opts.trace, "trace", false, "Record per-phase timings (shown with -v)")
	flags.StringVarP(&opts.format, "format", "o", "text", "Output format: text, json or yaml")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVar(&opts.debug, "debug", false, "Log debug details to stderr")

	cmd.AddCommand(
		newVerbCmd(opts, "get"),
		newVerbCmd(opts, "post"),
		newVerbCmd(opts, "put"),
		newVerbCmd(opts, "patch"),
		newVerbCmd(opts, "delete"),
		newVerbCmd(opts, "head"),
		newPingCmd(opts),
		newDataCmd(opts),
		newEncodeCmd(),
		newDecodeCmd(),
		newServeCmd(opts),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.ExecuteContext(context.Background())
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	o.logger = newLogger(cmd.ErrOrStderr(), o.debug)

	if len(o.envFiles) > 0 {
		if err := godotenv.Load(o.envFiles...); err != nil {
			return err
		}
		o.logger.Debug("loaded env files", "files", o.envFiles)
	}

	o.source = config.EnvSource()
	if o.configFile != "" {
		file, err := config.FileSource(o.configFile)
		if err != nil {
			return err
		}
		o.source = config.Chain(config.EnvSource(), file)
	}
	return nil
}

// newLogger logs warnings by default and everything with debug set.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) formatter(cmd *cobra.Command) (output.FormatProvider, error) {
	format, err := output.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	noColor := o.noColor
	if f, ok := cmd.OutOrStdout().(*os.File); !ok || !output.UseColor(f, noColor) {
		noColor = true
	}
	return output.GetFormatter(format, o.verbose, noColor), nil
}
