// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space,
	// underscore, or hyphen after accent folding.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s_-]`)
	// separatorRuns collapses consecutive separators into one hyphen.
	separatorRuns = regexp.MustCompile(`[\s_-]+`)
)

// deaccent strips combining marks so "Ñandubay" folds to "Nandubay".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generate creates a URL-friendly slug from the given string.
// Example: "Pinturería & Hogar 2026" → "pintureria-hogar-2026"
func Generate(s string) string {
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separatorRuns.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Unique returns base if taken reports it free, otherwise appends -1, -2, …
// until a free candidate is found. The caller's taken closure decides what
// "in use" means (usually a slug-column lookup excluding the record being
// renamed). Termination is bounded by the number of existing records plus
// one, since at most that many candidates can be taken.
//
// Uniqueness is ultimately enforced by the database's unique index; a
// concurrent allocation that wins the race surfaces as a conflict at
// commit time and must be retried, never ignored.
func Unique(base string, taken func(string) bool) string {
	if base == "" {
		base = "n-a"
	}
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
