package product

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Categories the catalog accepts. The set is closed; payload validation
// rejects anything else.
const (
	CategoryBlusa      = "Blusa"
	CategoryShort      = "Short"
	CategoryCalcado    = "Calcado"
	CategoryEletronico = "Eletronico"
	CategoryLivros     = "Livros"
	CategoryCalca      = "Calca"
)

// Categories returns the accepted category names in display order.
func Categories() []string {
	return []string{
		CategoryBlusa,
		CategoryShort,
		CategoryCalcado,
		CategoryEletronico,
		CategoryLivros,
		CategoryCalca,
	}
}

// Product is a catalog entry.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name"`
	Price         float64    `bun:"price,notnull" json:"price"`
	Description   string     `bun:"description" json:"description"`
	Category      string     `bun:"category,notnull" json:"category"`
	ImageURL      string     `bun:"image_url" json:"image_url"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Validate will run validation rules
func (p Product) Validate() error {
	categories := make([]any, 0, len(Categories()))
	for _, c := range Categories() {
		categories = append(categories, c)
	}

	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Price, validation.Required, validation.Min(0.01)),
		validation.Field(&p.Description, validation.Required, validation.Length(0, 500)),
		validation.Field(&p.Category, validation.Required, validation.In(categories...)),
		validation.Field(&p.ImageURL, validation.Required, is.URL),
	)
}
