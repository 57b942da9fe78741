package identity

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Roles interface {
	repository.Repository[*Role]

	FindByName(ctx context.Context, name string) (*Role, error)
	GetOrCreateByName(ctx context.Context, name string) (*Role, error)
	GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error)
	AddUserToRole(ctx context.Context, userID uuid.UUID, roleName string) error
	AddUserToRoleTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, roleName string) error
}

type roles struct {
	repository.Repository[*Role]
	db *bun.DB
}

var _ Roles = (*roles)(nil)

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &roles{
		Repository: repo,
		db:         db,
	}
}

func (a *roles) FindByName(ctx context.Context, name string) (*Role, error) {
	return a.findByName(ctx, a.db, name)
}

func (a *roles) findByName(ctx context.Context, idb bun.IDB, name string) (*Role, error) {
	record := &Role{}

	err := idb.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"name": name})
		}
		return nil, err
	}

	return record, nil
}

func (a *roles) GetOrCreateByName(ctx context.Context, name string) (*Role, error) {
	return a.GetOrCreateByNameTx(ctx, a.db, name)
}

func (a *roles) GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error) {
	role, err := a.findByName(ctx, tx, name)
	if err == nil {
		return role, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record := &Role{ID: uuid.New(), Name: name}
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *roles) AddUserToRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	return a.AddUserToRoleTx(ctx, a.db, userID, roleName)
}

func (a *roles) AddUserToRoleTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, roleName string) error {
	role, err := a.GetOrCreateByNameTx(ctx, tx, roleName)
	if err != nil {
		return err
	}

	membership := &UserRole{
		ID:     uuid.New(),
		UserID: userID,
		RoleID: role.ID,
	}

	_, err = tx.NewInsert().Model(membership).Exec(ctx)
	return err
}
