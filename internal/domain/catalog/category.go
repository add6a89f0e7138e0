package catalog

import (
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Category represents a product category used for storefront navigation
type Category struct {
	shared.BaseAggregateRoot
	Name      string
	Slug      string
	ImageURL  string
	SortOrder int
	Active    bool
}

// NewCategory creates a new active category
func NewCategory(name, slug string) (*Category, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "Category slug cannot be empty")
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Active:            true,
	}, nil
}

// Update updates the category's editable fields
func (c *Category) Update(name, imageURL string, sortOrder int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	c.Name = name
	c.ImageURL = imageURL
	c.SortOrder = sortOrder
	c.UpdatedAt = time.Now()
	return nil
}

// Deactivate hides the category from storefront navigation
func (c *Category) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
}

// Activate makes the category visible again
func (c *Category) Activate() {
	c.Active = true
	c.UpdatedAt = time.Now()
}
