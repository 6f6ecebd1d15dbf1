// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand represents a product manufacturer. Hidden brands keep their
// products but disappear from the public brand listing and brand pages.
type Brand struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`

	// ProductCount is populated by BrandStore.List for the admin view.
	ProductCount int `json:"product_count"`
}
