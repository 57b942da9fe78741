package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"

	"github.com/geekshopping/platform/web"
)

//go:embed views
var embeddedFS embed.FS

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	views, err := fs.Sub(embeddedFS, "views")
	if err != nil {
		slog.Error("failed to scope embedded views", "error", err)
		os.Exit(1)
	}
	engine := django.NewFileSystem(http.FS(views), ".html")

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:           "geekshopping-web",
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	controller := web.NewWebController(
		web.WithProductService(web.NewProductService(cfg.ProductAPI)),
		web.WithIdentityService(web.NewIdentityService(
			cfg.IdentityURL,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Scopes,
		)),
		web.WithWebLogger(logger.With("component", "web")),
	)

	web.RegisterWebRoutes(srv.Router(), controller)

	slog.Info("storefront listening", "addr", cfg.Addr)
	srv.Serve(cfg.Addr)

	WaitExitSignal()
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
