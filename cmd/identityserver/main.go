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

	repo := identity.NewRepositoryManager(db)
	repo.MustValidate()

	seeder := identity.NewSeedIdentityHandler(repo).
		WithLogger(logger.With("component", "seed"))
	if err := seeder.Execute(ctx, identity.SeedIdentityMessage{Region: cfg.SeedRegion}); err != nil {
		slog.Error("identity seed failed", "error", err)
		os.Exit(1)
	}

	registry, err := identity.DefaultRegistry()
	if err != nil {
		slog.Error("invalid client registry", "error", err)
		os.Exit(1)
	}

	store := repo.Users()
	issuer := identity.NewTokenIssuer(
		registry,
		identity.NewAuthenticator(store,
			identity.WithAuthenticatorLogger(logger.With("component", "authn"))),
		identity.NewClaimsAssembler(store,
			identity.WithAssemblerLogger(logger.With("component", "claims"))),
		identity.NewHS256Signer([]byte(cfg.SigningKey)),
		cfg.IssuerURL,
		identity.WithIssuerLogger(logger.With("component", "issuer")),
	)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName: "geekshopping-identity",
		}))
	})

	identity.RegisterIdentityRoutes(srv.Router(),
		identity.WithTokenIssuer(issuer),
		identity.WithRegistry(registry),
		identity.WithIssuerURL(cfg.IssuerURL),
		identity.WithControllerLogger(logger.With("component", "http")),
		identity.WithControllerDebug(cfg.Debug),
	)

	slog.Info("identity server listening", "addr", cfg.Addr)
	srv.Serve(cfg.Addr)

	WaitExitSignal()
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	models := []any{
		(*identity.User)(nil),
		(*identity.Role)(nil),
		(*identity.UserRole)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return nil, err
		}
	}

	return db, nil
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
