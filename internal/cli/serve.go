package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/lazyapi/config"
	"github.com/wesleyorama2/lazyapi/server"
	"github.com/wesleyorama2/lazyapi/services"
)

type serveOptions struct {
	addr      string
	name      string
	tokens    []string
	alias     string
	withRedis bool
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	so := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a small API backend with health and echo routes",
		Long: `Serve starts a gin backend configured from LAZYAPI_* keys. GET /health
reports status (and Redis reachability with --redis); /echo returns the
request back and is protected by the --token validator when tokens are set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := so.build(cmd.Context(), opts)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              so.addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				opts.logger.Info("listening", "addr", so.addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&so.addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&so.name, "name", "", "Application name appended to the title")
	cmd.Flags().StringArrayVar(&so.tokens, "token", nil, "Accepted token for /echo (can be used multiple times)")
	cmd.Flags().StringVar(&so.alias, "alias", server.DefaultAlias, "Header carrying the token")
	cmd.Flags().BoolVar(&so.withRedis, "redis", false, "Check Redis (REDIS_* keys) on startup and in /health")
	return cmd
}

// build assembles the app without starting it.
func (so *serveOptions) build(ctx context.Context, opts *rootOptions) (*server.App, error) {
	if !opts.debug {
		gin.SetMode(gin.ReleaseMode)
	}

	appCfg, err := config.ResolveApp(opts.source)
	if err != nil {
		return nil, err
	}
	app := server.NewApp(so.name, appCfg)
	app.Use(server.Logger(opts.logger))

	var redisCfg *services.RedisConfig
	if so.withRedis {
		rc, err := services.ResolveRedis(opts.source)
		if err != nil {
			return nil, err
		}
		if err := rc.Ensure(ctx, opts.logger); err != nil {
			return nil, err
		}
		redisCfg = &rc
	}

	app.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok", "version": app.Version}
		code := http.StatusOK
		if redisCfg != nil {
			up := redisCfg.CheckConnection(c.Request.Context())
			body["redis"] = up
			if !up {
				body["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, body)
	})

	echo := []gin.HandlerFunc{}
	if len(so.tokens) > 0 {
		echo = append(echo, server.MultiHeaderValidator(so.tokens, so.alias))
	}
	echo = append(echo, func(c *gin.Context) {
		headers := make(map[string]string, len(c.Request.Header))
		for k := range c.Request.Header {
			headers[k] = c.Request.Header.Get(k)
		}
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"query":      c.Request.URL.Query(),
				"headers":    headers,
				"authorized": c.GetBool(server.ContextKeyAuthorized),
				"requestId":  c.GetString(server.ContextKeyRequestID),
			},
		})
	})
	app.Any("/echo", echo...)

	opts.logger.Debug("app built", "title", app.Title, "protected", len(so.tokens) > 0)
	return app, nil
}
