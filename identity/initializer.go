package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// SeedIdentityMessage triggers the initial data load: the two well-known
// roles plus an admin and a client user. Safe to run on every boot, it
// returns early once the Admin role exists.
type SeedIdentityMessage struct {
	Region string `json:"region"` // default phone region for normalization
}

func (e SeedIdentityMessage) Type() string { return "identity.seed" }

type SeedIdentityHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewSeedIdentityHandler(repo RepositoryManager) *SeedIdentityHandler {
	return &SeedIdentityHandler{repo: repo, logger: defLogger{}}
}

func (h *SeedIdentityHandler) WithLogger(logger Logger) *SeedIdentityHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SeedIdentityHandler) Execute(ctx context.Context, event SeedIdentityMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during identity seed",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SeedIdentityHandler) execute(ctx context.Context, event SeedIdentityMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	region := event.Region
	if region == "" {
		region = "BR"
	}

	if _, err := h.repo.Roles().FindByName(ctx, RoleAdmin); err == nil {
		h.logger.Debug("identity seed already applied")
		return nil
	} else if !repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check seed state")
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Roles().GetOrCreateByNameTx(ctx, tx, RoleAdmin); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create admin role")
		}
		if _, err := h.repo.Roles().GetOrCreateByNameTx(ctx, tx, RoleClient); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create client role")
		}

		admin := seedUser{
			username:  "admin",
			email:     "admin@geekshopping.com",
			phone:     "+55 (11) 99999-9999",
			firstName: "Admin",
			lastName:  "GeekShopping",
			password:  "Admin@123",
			role:      RoleAdmin,
		}
		if err := h.createUser(ctx, tx, admin, region); err != nil {
			return err
		}

		client := seedUser{
			username:  "client",
			email:     "client@geekshopping.com",
			phone:     "+55 (11) 88888-8888",
			firstName: "Cliente",
			lastName:  "Teste",
			password:  "Client@123",
			role:      RoleClient,
		}

		return h.createUser(ctx, tx, client, region)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "identity seed transaction failed")
	}

	h.logger.Info("identity seed applied")

	return nil
}

type seedUser struct {
	username  string
	email     string
	phone     string
	firstName string
	lastName  string
	password  string
	role      RoleName
}

// createUser writes through the seed transaction so a mid-seed failure rolls
// every row back; a half-applied seed would otherwise survive the rerun guard.
func (h *SeedIdentityHandler) createUser(ctx context.Context, tx bun.IDB, seed seedUser, region string) error {
	hash, err := HashPassword(seed.password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash seed password")
	}

	user := &User{
		Username:       seed.username,
		Email:          seed.email,
		EmailConfirmed: true,
		PhoneNumber:    normalizePhone(seed.phone, region),
		FirstName:      seed.firstName,
		LastName:       seed.lastName,
		PasswordHash:   hash,
	}

	// Deterministic id so reseeding an emptied table keeps issued subjects stable.
	if id, err := hashid.NewUUID(seed.email); err == nil {
		user.ID = id
	}

	if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create seed user")
	}

	if err := h.repo.Roles().AddUserToRoleTx(ctx, tx, user.ID, seed.role); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not assign seed role")
	}

	return nil
}

// normalizePhone formats the number as E.164 when it parses; the raw value
// passes through otherwise, seed data should not fail the boot.
func normalizePhone(raw, region string) string {
	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
