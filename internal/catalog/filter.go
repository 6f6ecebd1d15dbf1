// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the ephemeral value objects shared by every
// product listing surface: the search filter and the pagination engine.
// Parsing here is fail-open — storefront search is best-effort and must
// never hard-fail on a malformed query string.
package catalog

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockFilter narrows results by availability.
type StockFilter string

const (
	StockAny StockFilter = ""
	StockIn  StockFilter = "in"
	StockOut StockFilter = "out"
)

// Filter describes one product search. The zero value matches everything.
// CategoryIDs is the already-resolved subtree scope (the selected category
// plus all of its descendants), not a single id.
type Filter struct {
	Text        string
	SKU         string
	CategoryIDs []uuid.UUID
	BrandID     *uuid.UUID
	Stock       StockFilter
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
}

// Tokens splits the free-text query on whitespace. Tokens combine with
// AND; within a token the searchable fields combine with OR.
func (f Filter) Tokens() []string {
	return strings.Fields(f.Text)
}

// ParseFilter reads filter parameters from a query string. Invalid values
// are dropped, never rejected: a malformed UUID means no id filter, an
// unparseable price means no bound, an unknown stock value means any.
// Category scope resolution (id → subtree) is the caller's job since it
// needs the tree store.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Text: strings.TrimSpace(q.Get("q")),
		SKU:  strings.TrimSpace(q.Get("code")),
	}

	if id, ok := ParseUUID(q.Get("brand_id")); ok {
		f.BrandID = &id
	}

	switch StockFilter(q.Get("stock")) {
	case StockIn:
		f.Stock = StockIn
	case StockOut:
		f.Stock = StockOut
	}

	f.PriceMin = ParsePrice(q.Get("pmin"))
	f.PriceMax = ParsePrice(q.Get("pmax"))
	return f
}

// ParseUUID parses an id from user input, tolerating empty strings and
// placeholder junk ("null", "undefined") that browsers are known to send.
func ParseUUID(raw string) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "none", "null", "undefined":
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ParsePrice parses a price written in the local convention: thousands
// separated by '.', decimals by ',' ("1.234,56"). Returns nil when the
// input is empty or unparseable — the filter simply applies no bound.
// Admin forms use the same parser but treat nil as a validation error.
func ParsePrice(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	normalized := strings.ReplaceAll(raw, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil
	}
	return &d
}
