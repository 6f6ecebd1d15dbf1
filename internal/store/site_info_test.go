// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"ferrecms/internal/models"
)

func TestSiteInfoSingleRow(t *testing.T) {
	db := testDB(t)
	s := NewSiteInfoStore(db)

	// Start from a clean slate; restore nothing afterwards since the dev
	// seed recreates the record.
	if _, err := db.Exec("DELETE FROM site_info"); err != nil {
		t.Fatalf("clear site_info: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM site_info") })

	if si, err := s.Get(); err != nil || si != nil {
		t.Fatalf("empty table: got %v, %v", si, err)
	}

	// First save creates the record.
	first, err := s.Upsert(&models.SiteInfo{
		StoreName:        "Ferretería Test",
		Address:          "Av. Siempreviva 742",
		Hours:            "Lun a Vie 8 a 18",
		Email:            strPtr("ventas@test.local"),
		InquiriesEnabled: true,
	})
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if first.StoreName != "Ferretería Test" || !first.InquiriesEnabled {
		t.Errorf("unexpected record: %+v", first)
	}

	// Second save updates in place and must not touch the inquiries flag.
	second, err := s.Upsert(&models.SiteInfo{
		StoreName: "Ferretería Test Renombrada",
		Address:   "Av. Siempreviva 742",
		Hours:     "Lun a Sab 8 a 20",
	})
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Error("update created a second row")
	}
	if second.StoreName != "Ferretería Test Renombrada" {
		t.Errorf("StoreName = %q", second.StoreName)
	}
	if !second.InquiriesEnabled {
		t.Error("update cleared the inquiries flag")
	}
	if second.Email != nil {
		t.Errorf("Email = %v, want cleared", second.Email)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM site_info").Scan(&count); err != nil || count != 1 {
		t.Errorf("row count = %d, %v", count, err)
	}
}

func TestSiteInfoToggleInquiries(t *testing.T) {
	db := testDB(t)
	s := NewSiteInfoStore(db)

	if _, err := db.Exec("DELETE FROM site_info"); err != nil {
		t.Fatalf("clear site_info: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM site_info") })

	// Without a record the toggle has nothing to flip.
	if _, err := s.ToggleInquiries(); err != ErrNotFound {
		t.Errorf("toggle without record: got %v, want ErrNotFound", err)
	}

	if _, err := s.Upsert(&models.SiteInfo{StoreName: "Toggle Test", InquiriesEnabled: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if enabled, err := s.ToggleInquiries(); err != nil || enabled {
		t.Errorf("first toggle: enabled=%v err=%v, want false", enabled, err)
	}
	if enabled, err := s.ToggleInquiries(); err != nil || !enabled {
		t.Errorf("second toggle: enabled=%v err=%v, want true", enabled, err)
	}
}
