// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Slide is one homepage carousel image, ordered by SortOrder ascending.
type Slide struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	SortOrder int       `json:"sort_order"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
}
