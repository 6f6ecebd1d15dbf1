// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the catalog tree. Categories form a forest:
// a node has at most one parent and any number of children. The slug
// is unique across the whole table.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id"`
	CreatedAt time.Time  `json:"created_at"`

	// Virtual fields populated by store methods.
	Children     []Category `json:"children,omitempty"`
	Depth        int        `json:"depth"`
	ProductCount int        `json:"product_count"`
}

// Crumb is one element of a breadcrumb trail. The current page is the
// last element and carries an empty URL.
type Crumb struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}
