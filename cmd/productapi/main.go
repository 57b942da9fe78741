package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/geekshopping/platform/identity"
	"github.com/geekshopping/platform/identity/middleware/scopeware"
	"github.com/geekshopping/platform/product"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DSN)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	catalog := product.NewProductsRepository(db)

	if !cfg.SkipSeed {
		if err := seedCatalog(ctx, catalog); err != nil {
			slog.Error("catalog seed failed", "error", err)
			os.Exit(1)
		}
	}

	verifier := identity.NewHS256Verifier([]byte(cfg.SigningKey), cfg.IssuerURL)
	guard := scopeware.RequireScope(identity.ScopeGeekShopping,
		scopeware.VerifierFunc(func(raw string) (scopeware.ScopeClaims, error) {
			return verifier.Verify(raw)
		}))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName: "geekshopping-product-api",
		}))
	})

	controller := product.NewHTTPController(catalog, product.HTTPConfig{
		Guard: guard,
	})
	controller.RegisterRoutes(srv.Router())

	slog.Info("product API listening", "addr", cfg.Addr)
	srv.Serve(cfg.Addr)

	WaitExitSignal()
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().Model((*product.Product)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// seedCatalog loads a demo catalog on first boot. An already populated
// table leaves the data untouched.
func seedCatalog(ctx context.Context, catalog product.Catalog) error {
	existing, err := catalog.FindAll(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	records := []*product.Product{
		{
			Name:        "Camiseta Powered by Go",
			Price:       69.9,
			Description: "Camiseta 100% algodao com estampa exclusiva.",
			Category:    product.CategoryBlusa,
			ImageURL:    "https://img.geekshopping.com/camiseta-powered-by-go.jpg",
		},
		{
			Name:        "Short Nerd Vibes",
			Price:       49.9,
			Description: "Short confortavel para maratonar series.",
			Category:    product.CategoryShort,
			ImageURL:    "https://img.geekshopping.com/short-nerd-vibes.jpg",
		},
		{
			Name:        "Tenis Pixel Runner",
			Price:       299.9,
			Description: "Tenis com solado em gel e cabedal respiravel.",
			Category:    product.CategoryCalcado,
			ImageURL:    "https://img.geekshopping.com/tenis-pixel-runner.jpg",
		},
		{
			Name:        "Teclado Mecanico RGB",
			Price:       450.0,
			Description: "Teclado mecanico com switches azuis e iluminacao RGB.",
			Category:    product.CategoryEletronico,
			ImageURL:    "https://img.geekshopping.com/teclado-mecanico-rgb.jpg",
		},
		{
			Name:        "Livro Clean Architecture",
			Price:       89.9,
			Description: "Guia pratico de arquitetura de software.",
			Category:    product.CategoryLivros,
			ImageURL:    "https://img.geekshopping.com/livro-clean-architecture.jpg",
		},
	}

	for _, record := range records {
		if _, err := catalog.Save(ctx, record); err != nil {
			return err
		}
	}

	slog.Info("catalog seed applied", "products", len(records))

	return nil
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
