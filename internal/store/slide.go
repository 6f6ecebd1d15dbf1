// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"ferrecms/internal/models"
)

// SlideStore manages homepage carousel slides.
type SlideStore struct {
	db *sql.DB
}

// NewSlideStore returns a new SlideStore.
func NewSlideStore(db *sql.DB) *SlideStore {
	return &SlideStore{db: db}
}

const slideColumns = `id, filename, sort_order, visible, created_at`

func scanSlide(scanner interface{ Scan(...any) error }) (*models.Slide, error) {
	var sl models.Slide
	err := scanner.Scan(&sl.ID, &sl.Filename, &sl.SortOrder, &sl.Visible, &sl.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sl, nil
}

// List returns every slide ordered for the admin table.
func (s *SlideStore) List() ([]models.Slide, error) {
	return s.list(`SELECT ` + slideColumns + ` FROM slides ORDER BY sort_order, created_at DESC`)
}

// ListVisible returns the visible slides for the homepage carousel,
// bounded so a runaway upload session cannot flood the page.
func (s *SlideStore) ListVisible(limit int) ([]models.Slide, error) {
	return s.list(`
		SELECT `+slideColumns+` FROM slides
		WHERE visible
		ORDER BY sort_order, created_at DESC
		LIMIT $1`, limit)
}

func (s *SlideStore) list(query string, args ...any) ([]models.Slide, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}
	defer rows.Close()

	var items []models.Slide
	for rows.Next() {
		sl, err := scanSlide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slide: %w", err)
		}
		items = append(items, *sl)
	}
	return items, rows.Err()
}

// FindByID retrieves a slide by ID. Returns nil if not found.
func (s *SlideStore) FindByID(id uuid.UUID) (*models.Slide, error) {
	row := s.db.QueryRow(`SELECT `+slideColumns+` FROM slides WHERE id = $1`, id)
	sl, err := scanSlide(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find slide by id: %w", err)
	}
	return sl, nil
}

// Create inserts a new slide.
func (s *SlideStore) Create(filename string, sortOrder int, visible bool) (*models.Slide, error) {
	row := s.db.QueryRow(`
		INSERT INTO slides (filename, sort_order, visible)
		VALUES ($1, $2, $3)
		RETURNING `+slideColumns,
		filename, sortOrder, visible,
	)
	sl, err := scanSlide(row)
	if err != nil {
		return nil, fmt.Errorf("create slide: %w", err)
	}
	return sl, nil
}

// BulkCreate appends slides after the current maximum sort order, all in
// one transaction. Returns the number created.
func (s *SlideStore) BulkCreate(filenames []string) (int, error) {
	if len(filenames) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var maxOrder int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(sort_order), -1) FROM slides`).Scan(&maxOrder); err != nil {
		return 0, fmt.Errorf("max slide order: %w", err)
	}

	for i, filename := range filenames {
		if _, err := tx.Exec(`
			INSERT INTO slides (filename, sort_order, visible)
			VALUES ($1, $2, TRUE)
		`, filename, maxOrder+i+1); err != nil {
			return 0, fmt.Errorf("insert slide: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit slides: %w", err)
	}
	return len(filenames), nil
}

// Update changes a slide's ordering, visibility, and optionally its image.
func (s *SlideStore) Update(id uuid.UUID, sortOrder int, visible bool, filename *string) error {
	var err error
	if filename != nil {
		_, err = s.db.Exec(`
			UPDATE slides SET sort_order = $1, visible = $2, filename = $3 WHERE id = $4
		`, sortOrder, visible, *filename, id)
	} else {
		_, err = s.db.Exec(`
			UPDATE slides SET sort_order = $1, visible = $2 WHERE id = $3
		`, sortOrder, visible, id)
	}
	if err != nil {
		return fmt.Errorf("update slide: %w", err)
	}
	return nil
}

// ToggleVisible flips a slide's visibility and returns the new state.
func (s *SlideStore) ToggleVisible(id uuid.UUID) (bool, error) {
	var visible bool
	err := s.db.QueryRow(`
		UPDATE slides SET visible = NOT visible WHERE id = $1 RETURNING visible
	`, id).Scan(&visible)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle slide visibility: %w", err)
	}
	return visible, nil
}

// Delete removes a slide by ID.
func (s *SlideStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM slides WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slide: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
