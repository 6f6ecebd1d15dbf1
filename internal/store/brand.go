// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"ferrecms/internal/models"
	"ferrecms/internal/slug"
)

// BrandStore manages brands in the database.
type BrandStore struct {
	db *sql.DB
}

// NewBrandStore returns a new BrandStore.
func NewBrandStore(db *sql.DB) *BrandStore {
	return &BrandStore{db: db}
}

const brandColumns = `id, name, slug, visible, created_at`

func scanBrand(scanner interface{ Scan(...any) error }) (*models.Brand, error) {
	var b models.Brand
	err := scanner.Scan(&b.ID, &b.Name, &b.Slug, &b.Visible, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all brands ordered by name, with product counts for the
// admin view.
func (s *BrandStore) List() ([]models.Brand, error) {
	rows, err := s.db.Query(`
		SELECT b.id, b.name, b.slug, b.visible, b.created_at,
		       COUNT(p.id) AS product_count
		FROM brands b
		LEFT JOIN products p ON p.brand_id = b.id
		GROUP BY b.id
		ORDER BY b.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var items []models.Brand
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Visible, &b.CreatedAt, &b.ProductCount); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// ListVisible returns publicly listed brands ordered by name.
func (s *BrandStore) ListVisible() ([]models.Brand, error) {
	rows, err := s.db.Query(`SELECT ` + brandColumns + ` FROM brands WHERE visible ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list visible brands: %w", err)
	}
	defer rows.Close()

	var items []models.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// ListByCategoryIDs returns the brands that have at least one product in
// the given category scope. Used to narrow the brand filter on category
// pages to options that can actually match.
func (s *BrandStore) ListByCategoryIDs(categoryIDs []uuid.UUID) ([]models.Brand, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT DISTINCT b.id, b.name, b.slug, b.visible, b.created_at
		FROM brands b
		JOIN products p ON p.brand_id = b.id
		WHERE p.category_id = ANY($1::uuid[])
		ORDER BY b.name
	`, uuidStrings(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("list brands by categories: %w", err)
	}
	defer rows.Close()

	var items []models.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// FindByID retrieves a brand by ID. Returns nil if not found.
func (s *BrandStore) FindByID(id uuid.UUID) (*models.Brand, error) {
	row := s.db.QueryRow(`SELECT `+brandColumns+` FROM brands WHERE id = $1`, id)
	b, err := scanBrand(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find brand by id: %w", err)
	}
	return b, nil
}

// FindVisibleBySlug retrieves a visible brand by slug for the public brand
// page. Returns nil if not found or hidden.
func (s *BrandStore) FindVisibleBySlug(brandSlug string) (*models.Brand, error) {
	row := s.db.QueryRow(`SELECT `+brandColumns+` FROM brands WHERE slug = $1 AND visible`, brandSlug)
	b, err := scanBrand(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find brand by slug: %w", err)
	}
	return b, nil
}

func (s *BrandStore) slugTaken(candidate string, excludeID uuid.UUID) bool {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM brands WHERE slug = $1 AND id <> $2)`,
		candidate, excludeID,
	).Scan(&exists)
	if err != nil {
		return true
	}
	return exists
}

// Create inserts a new brand with a slug derived from its name. Both name
// and slug are unique; a race-lost insert surfaces as a ConflictError.
func (s *BrandStore) Create(name string, visible bool) (*models.Brand, error) {
	brandSlug := slug.Unique(slug.Generate(name), func(candidate string) bool {
		return s.slugTaken(candidate, uuid.Nil)
	})

	row := s.db.QueryRow(`
		INSERT INTO brands (name, slug, visible)
		VALUES ($1, $2, $3)
		RETURNING `+brandColumns,
		name, brandSlug, visible,
	)
	b, err := scanBrand(row)
	if err != nil {
		return nil, conflictOr(err, "create brand", name)
	}
	return b, nil
}

// Update renames a brand, recomputing and re-uniquing its slug.
func (s *BrandStore) Update(id uuid.UUID, name string, visible bool) (*models.Brand, error) {
	brandSlug := slug.Unique(slug.Generate(name), func(candidate string) bool {
		return s.slugTaken(candidate, id)
	})

	row := s.db.QueryRow(`
		UPDATE brands SET name = $1, slug = $2, visible = $3
		WHERE id = $4
		RETURNING `+brandColumns,
		name, brandSlug, visible, id,
	)
	b, err := scanBrand(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, conflictOr(err, "update brand", name)
	}
	return b, nil
}

// ToggleVisible flips a brand's public visibility and returns the new state.
func (s *BrandStore) ToggleVisible(id uuid.UUID) (bool, error) {
	var visible bool
	err := s.db.QueryRow(`
		UPDATE brands SET visible = NOT visible WHERE id = $1 RETURNING visible
	`, id).Scan(&visible)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle brand visibility: %w", err)
	}
	return visible, nil
}

// Delete removes a brand that has no associated products; otherwise the
// deletion is rejected with an InvalidOpError.
func (s *BrandStore) Delete(id uuid.UUID) error {
	var products int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM products WHERE brand_id = $1`, id).Scan(&products)
	if err != nil {
		return fmt.Errorf("check brand usage: %w", err)
	}
	if products > 0 {
		return &InvalidOpError{Reason: "brand has products"}
	}

	res, err := s.db.Exec(`DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
