// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// SiteInfo is the single-row store configuration record. Feature flags
// such as InquiriesEnabled live here rather than in process state so
// every request handler sees the same value and it survives restarts.
type SiteInfo struct {
	ID               uuid.UUID `json:"id"`
	StoreName        string    `json:"store_name"`
	Address          string    `json:"address"`
	Hours            string    `json:"hours"`
	Email            *string   `json:"email"`
	Phone            *string   `json:"phone"`
	Instagram        *string   `json:"instagram"`
	WhatsApp         *string   `json:"whatsapp"`
	InquiriesEnabled bool      `json:"inquiries_enabled"`
	UpdatedAt        time.Time `json:"updated_at"`
}
