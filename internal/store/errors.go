// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a referenced entity id does not exist.
var ErrNotFound = errors.New("not found")

// ConflictError surfaces a persistence-level uniqueness violation — the
// application-side pre-checks are optimistic, so a racing writer can still
// lose at commit time. Value carries the colliding input when derivable.
type ConflictError struct {
	Value string
	err   error
}

func (e *ConflictError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("duplicate value %q", e.Value)
	}
	return "duplicate value"
}

func (e *ConflictError) Unwrap() error { return e.err }

// InvalidOpError rejects a mutation that would break a structural
// invariant: creating a parent cycle or deleting a non-empty node.
type InvalidOpError struct {
	Reason string
}

func (e *InvalidOpError) Error() string { return e.Reason }

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// conflictOr wraps err as a ConflictError when it is a unique-constraint
// violation, tagging it with the value that collided. Other errors pass
// through wrapped with op.
func conflictOr(err error, op, value string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &ConflictError{Value: value, err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsInvalidOp reports whether err is a rejected structural mutation.
func IsInvalidOp(err error) bool {
	var i *InvalidOpError
	return errors.As(err, &i)
}
