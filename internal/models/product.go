// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxGalleryImages caps the number of gallery entries per product.
// Appends beyond the cap are skipped, not rejected.
const MaxGalleryImages = 10

// Product is a catalog item. SKU is a display code, not a key: duplicates
// are allowed. Price is nullable — products without a price are shown as
// "consultar" and excluded from any bounded price filter.
type Product struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	SKU        *string          `json:"sku"`
	Price      *decimal.Decimal `json:"price"`
	InStock    bool             `json:"in_stock"`
	Featured   bool             `json:"featured"`
	ShortDesc  *string          `json:"short_desc"`
	LongDesc   *string          `json:"long_desc"`
	CoverImage *string          `json:"cover_image"`
	CategoryID *uuid.UUID       `json:"category_id"`
	BrandID    *uuid.UUID       `json:"brand_id"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Virtual fields populated by store methods.
	CategoryName *string        `json:"category_name,omitempty"`
	BrandName    *string        `json:"brand_name,omitempty"`
	Images       []ProductImage `json:"images,omitempty"`
}

// ProductImage is one gallery entry. The entry with the lowest position
// is the product's cover image; stores resynchronize the product's
// cover_image column after every gallery mutation.
type ProductImage struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Filename  string    `json:"filename"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
