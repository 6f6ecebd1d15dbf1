// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"ferrecms/internal/models"
)

// SiteInfoStore manages the single-row store configuration record.
type SiteInfoStore struct {
	db *sql.DB
}

// NewSiteInfoStore returns a new SiteInfoStore.
func NewSiteInfoStore(db *sql.DB) *SiteInfoStore {
	return &SiteInfoStore{db: db}
}

const siteInfoColumns = `id, store_name, address, hours, email, phone, instagram, whatsapp,
	inquiries_enabled, updated_at`

func scanSiteInfo(scanner interface{ Scan(...any) error }) (*models.SiteInfo, error) {
	var si models.SiteInfo
	err := scanner.Scan(&si.ID, &si.StoreName, &si.Address, &si.Hours,
		&si.Email, &si.Phone, &si.Instagram, &si.WhatsApp,
		&si.InquiriesEnabled, &si.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &si, nil
}

// Get returns the site info record, or nil when none has been created yet.
func (s *SiteInfoStore) Get() (*models.SiteInfo, error) {
	row := s.db.QueryRow(`SELECT ` + siteInfoColumns + ` FROM site_info LIMIT 1`)
	si, err := scanSiteInfo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get site info: %w", err)
	}
	return si, nil
}

// Upsert writes the record, creating it on first save.
func (s *SiteInfoStore) Upsert(si *models.SiteInfo) (*models.SiteInfo, error) {
	existing, err := s.Get()
	if err != nil {
		return nil, err
	}

	var row *sql.Row
	if existing == nil {
		row = s.db.QueryRow(`
			INSERT INTO site_info (store_name, address, hours, email, phone, instagram, whatsapp, inquiries_enabled)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+siteInfoColumns,
			si.StoreName, si.Address, si.Hours, si.Email, si.Phone, si.Instagram, si.WhatsApp, si.InquiriesEnabled,
		)
	} else {
		row = s.db.QueryRow(`
			UPDATE site_info SET
				store_name = $1, address = $2, hours = $3, email = $4,
				phone = $5, instagram = $6, whatsapp = $7, updated_at = NOW()
			WHERE id = $8
			RETURNING `+siteInfoColumns,
			si.StoreName, si.Address, si.Hours, si.Email, si.Phone, si.Instagram, si.WhatsApp, existing.ID,
		)
	}

	saved, err := scanSiteInfo(row)
	if err != nil {
		return nil, fmt.Errorf("save site info: %w", err)
	}
	return saved, nil
}

// ToggleInquiries flips the inquiry-form feature flag and returns the new
// state. Fails with ErrNotFound when the record has never been created.
func (s *SiteInfoStore) ToggleInquiries() (bool, error) {
	var enabled bool
	err := s.db.QueryRow(`
		UPDATE site_info SET inquiries_enabled = NOT inquiries_enabled, updated_at = NOW()
		RETURNING inquiries_enabled
	`).Scan(&enabled)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle inquiries: %w", err)
	}
	return enabled, nil
}
