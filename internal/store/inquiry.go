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

// InquiryStore manages customer inquiries submitted through the public
// contact form. Attachments are stored as three nullable filename columns
// matching the fixed upload slots on the form.
type InquiryStore struct {
	db *sql.DB
}

// NewInquiryStore returns a new InquiryStore.
func NewInquiryStore(db *sql.DB) *InquiryStore {
	return &InquiryStore{db: db}
}

const inquiryColumns = `id, name, email, phone, message, image1, image2, image3, created_at, read_at`

func scanInquiry(scanner interface{ Scan(...any) error }) (*models.Inquiry, error) {
	var q models.Inquiry
	var img1, img2, img3 *string
	err := scanner.Scan(&q.ID, &q.Name, &q.Email, &q.Phone, &q.Message,
		&img1, &img2, &img3, &q.CreatedAt, &q.ReadAt)
	if err != nil {
		return nil, err
	}
	for _, img := range []*string{img1, img2, img3} {
		if img != nil {
			q.Images = append(q.Images, *img)
		}
	}
	return &q, nil
}

// imageSlots spreads up to three attachment filenames over the fixed columns.
func imageSlots(images []string) [models.MaxInquiryImages]*string {
	var slots [models.MaxInquiryImages]*string
	for i := range images {
		if i >= len(slots) {
			break
		}
		slots[i] = &images[i]
	}
	return slots
}

// List returns all inquiries, unread first, newest first within each group.
func (s *InquiryStore) List() ([]models.Inquiry, error) {
	rows, err := s.db.Query(`
		SELECT ` + inquiryColumns + ` FROM inquiries
		ORDER BY read_at IS NOT NULL, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	var items []models.Inquiry
	for rows.Next() {
		q, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		items = append(items, *q)
	}
	return items, rows.Err()
}

// FindByID retrieves an inquiry by ID. Returns nil if not found.
func (s *InquiryStore) FindByID(id uuid.UUID) (*models.Inquiry, error) {
	row := s.db.QueryRow(`SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, id)
	q, err := scanInquiry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find inquiry by id: %w", err)
	}
	return q, nil
}

// Create persists a new inquiry. Persisting always happens before email
// delivery is attempted — delivery failure never loses the record.
func (s *InquiryStore) Create(q *models.Inquiry) (*models.Inquiry, error) {
	slots := imageSlots(q.Images)
	row := s.db.QueryRow(`
		INSERT INTO inquiries (name, email, phone, message, image1, image2, image3)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+inquiryColumns,
		q.Name, q.Email, q.Phone, q.Message, slots[0], slots[1], slots[2],
	)
	created, err := scanInquiry(row)
	if err != nil {
		return nil, fmt.Errorf("create inquiry: %w", err)
	}
	return created, nil
}

// MarkRead stamps read_at the first time an admin opens an inquiry.
func (s *InquiryStore) MarkRead(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE inquiries SET read_at = NOW() WHERE id = $1 AND read_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("mark inquiry read: %w", err)
	}
	return nil
}

// Delete removes an inquiry by ID.
func (s *InquiryStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM inquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inquiry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadCount returns how many inquiries have not been opened yet. Shown
// as a badge in the admin navigation; callers treat an error as zero.
func (s *InquiryStore) UnreadCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM inquiries WHERE read_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread inquiries: %w", err)
	}
	return count, nil
}
