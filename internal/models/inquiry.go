// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxInquiryImages limits the attachments a visitor can send with one inquiry.
const MaxInquiryImages = 3

// MaxInquiryMessageLen caps the inquiry message length.
const MaxInquiryMessageLen = 500

// Inquiry is a customer question submitted through the public contact
// form. Email delivery is best-effort; the record persists regardless.
type Inquiry struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone"`
	Message   string     `json:"message"`
	Images    []string   `json:"images,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`
}

// Read reports whether an admin has opened this inquiry.
func (i *Inquiry) Read() bool { return i.ReadAt != nil }
