package server

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wesleyorama2/lazyapi/config"
)

// App is a gin engine with descriptive metadata.
type App struct {
	*gin.Engine

	Title       string
	Description string
	Version     string
}

// NewApp creates an app from cfg. A non-empty name is appended to the
// configured title and description.
func NewApp(name string, cfg config.AppConfig) *App {
	app := &App{
		Engine:      gin.New(),
		Title:       cfg.Title,
		Description: cfg.Description,
		Version:     cfg.Version,
	}
	if name != "" {
		app.Title += ": " + name
		app.Description += " " + name
	}

	app.Use(gin.Recovery(), RequestID())
	if cfg.IncludeMiddleware {
		app.Use(cors.New(corsConfig(cfg)))
	}
	app.GET("/", app.info)
	return app
}

func corsConfig(cfg config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials,
	}
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return c
}

func (a *App) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":       a.Title,
		"description": a.Description,
		"version":     a.Version,
	})
}
