package product

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Catalog is the surface the HTTP controller consumes. Products implements it
// over bun; tests swap in a fake.
type Catalog interface {
	FindAll(ctx context.Context, category string) ([]*Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, record *Product) (*Product, error)
	Replace(ctx context.Context, record *Product) (*Product, error)
	Remove(ctx context.Context, id uuid.UUID) (bool, error)
}

type Products interface {
	repository.Repository[*Product]
	Catalog
}

type products struct {
	repository.Repository[*Product]
	db *bun.DB
}

var (
	_ Products = (*products)(nil)
	_ Catalog  = (*products)(nil)
)

func NewProductsRepository(db *bun.DB) Products {
	repo := repository.NewRepository[*Product](db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &products{
		Repository: repo,
		db:         db,
	}
}

// FindAll lists the catalog, optionally narrowed to one category. Ordering is
// stable so the storefront renders the same sequence on every load.
func (a *products) FindAll(ctx context.Context, category string) ([]*Product, error) {
	var records []*Product

	q := a.db.NewSelect().
		Model(&records).
		OrderExpr("prd.name ASC")

	if category != "" {
		q = q.Where("?TableAlias.category = ?", category)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (a *products) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *products) Save(ctx context.Context, record *Product) (*Product, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.Create(ctx, record)
}

// Replace updates an existing record in full; the record must already exist.
func (a *products) Replace(ctx context.Context, record *Product) (*Product, error) {
	existing, err := a.FindByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	record.CreatedAt = existing.CreatedAt

	_, err = a.db.NewUpdate().
		Model(record).
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

// Remove deletes by id, reporting whether a record was removed.
func (a *products) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := a.db.NewDelete().
		Model((*Product)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
