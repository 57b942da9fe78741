package identity

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordFailedAccessSQL increments the failure counter and engages the
// lockout window in a single statement. The counter and lockout_until are a
// pair; doing the read-modify-write inside one UPDATE keeps concurrent failed
// attempts for the same user from under-counting.
var RecordFailedAccessSQL = `UPDATE "users" AS "usr"
SET
	"failed_access_count" = CASE WHEN "failed_access_count" + 1 >= ? THEN 0 ELSE "failed_access_count" + 1 END,
	"lockout_until"       = CASE WHEN "failed_access_count" + 1 >= ? THEN ? ELSE "lockout_until" END
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
);`

var ResetLockoutSQL = `UPDATE "users" AS "usr"
SET
	"failed_access_count" = 0,
	"lockout_until" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
);`

type Users interface {
	repository.Repository[*User]
	CredentialStore

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users           = (*users)(nil)
	_ CredentialStore = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user != nil && user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	record := &User{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"username": username})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) FindUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *users) GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string

	// ORDER BY keeps role claim ordering deterministic across calls.
	err := a.db.NewSelect().
		ColumnExpr("rol.name").
		TableExpr("roles AS rol").
		Join(`JOIN user_roles AS ur ON ur.role_id = rol.id`).
		Where("ur.user_id = ?", userID).
		Where("rol.deleted_at IS NULL").
		OrderExpr("rol.name ASC").
		Scan(ctx, &names)

	if err != nil {
		return nil, err
	}

	return names, nil
}

func (a *users) UpdateLockout(ctx context.Context, userID uuid.UUID, maxFailed int, lockoutUntil time.Time) error {
	// NOTE: Updating through the ORM needs a select-then-update round trip,
	// which loses the atomicity the counter pair requires.
	_, err := a.db.NewRaw(
		RecordFailedAccessSQL,
		maxFailed, maxFailed, lockoutUntil, userID,
	).Exec(ctx)

	return err
}

func (a *users) ResetLockout(ctx context.Context, userID uuid.UUID) error {
	_, err := a.db.NewRaw(ResetLockoutSQL, userID).Exec(ctx)
	return err
}
