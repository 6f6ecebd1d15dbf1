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

// ProductImageStore manages product galleries. Every mutation runs in a
// transaction and finishes by resynchronizing the product's cover image
// to the lowest-position remaining entry.
type ProductImageStore struct {
	db *sql.DB
}

// NewProductImageStore returns a new ProductImageStore.
func NewProductImageStore(db *sql.DB) *ProductImageStore {
	return &ProductImageStore{db: db}
}

const productImageColumns = `id, product_id, filename, position, created_at`

// ListByProduct returns a product's gallery ordered by position.
func (s *ProductImageStore) ListByProduct(productID uuid.UUID) ([]models.ProductImage, error) {
	rows, err := s.db.Query(`
		SELECT `+productImageColumns+` FROM product_images
		WHERE product_id = $1
		ORDER BY position, created_at
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	var items []models.ProductImage
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Filename, &img.Position, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

// Append adds filenames to the end of a product's gallery. Entries beyond
// the gallery cap are skipped, not rejected: the return values report how
// many were added and how many were skipped.
func (s *ProductImageStore) Append(productID uuid.UUID, filenames []string) (added, skipped int, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current, maxPos int
	err = tx.QueryRow(`
		SELECT COUNT(*), COALESCE(MAX(position), 0)
		FROM product_images WHERE product_id = $1
	`, productID).Scan(&current, &maxPos)
	if err != nil {
		return 0, 0, fmt.Errorf("count product images: %w", err)
	}

	room := models.MaxGalleryImages - current
	if room < 0 {
		room = 0
	}
	for i, filename := range filenames {
		if i >= room {
			skipped++
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO product_images (product_id, filename, position)
			VALUES ($1, $2, $3)
		`, productID, filename, maxPos+i+1)
		if err != nil {
			return 0, 0, fmt.Errorf("insert product image: %w", err)
		}
		added++
	}

	if err := syncCoverImage(tx, productID); err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit gallery append: %w", err)
	}
	return added, skipped, nil
}

// Remove deletes one gallery entry and returns its filename so the caller
// can drop the stored object. The cover image is resynchronized.
func (s *ProductImageStore) Remove(productID, imageID uuid.UUID) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var filename string
	err = tx.QueryRow(`
		DELETE FROM product_images WHERE id = $1 AND product_id = $2
		RETURNING filename
	`, imageID, productID).Scan(&filename)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete product image: %w", err)
	}

	if err := syncCoverImage(tx, productID); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit gallery remove: %w", err)
	}
	return filename, nil
}

// Reorder rewrites gallery positions to match orderedIDs. The submitted
// ids must be exactly the current gallery — any missing, extra, or
// foreign id rejects the whole request with no partial application.
func (s *ProductImageStore) Reorder(productID uuid.UUID, orderedIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT id FROM product_images WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("list gallery ids: %w", err)
	}
	current := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan gallery id: %w", err)
		}
		current[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list gallery ids: %w", err)
	}

	if len(orderedIDs) != len(current) {
		return &InvalidOpError{Reason: "submitted order does not match the gallery"}
	}
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !current[id] || seen[id] {
			return &InvalidOpError{Reason: "submitted order does not match the gallery"}
		}
		seen[id] = true
	}

	for i, id := range orderedIDs {
		if _, err := tx.Exec(`
			UPDATE product_images SET position = $1 WHERE id = $2
		`, i+1, id); err != nil {
			return fmt.Errorf("reorder image %s: %w", id, err)
		}
	}

	if err := syncCoverImage(tx, productID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit gallery reorder: %w", err)
	}
	return nil
}

// syncCoverImage points products.cover_image at the lowest-position
// gallery entry, or NULL when the gallery is empty.
func syncCoverImage(tx *sql.Tx, productID uuid.UUID) error {
	_, err := tx.Exec(`
		UPDATE products SET cover_image = (
			SELECT filename FROM product_images
			WHERE product_id = $1
			ORDER BY position, created_at
			LIMIT 1
		)
		WHERE id = $1
	`, productID)
	if err != nil {
		return fmt.Errorf("sync cover image: %w", err)
	}
	return nil
}
