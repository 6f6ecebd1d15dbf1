// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ferrecms/internal/catalog"
	"ferrecms/internal/models"
)

// ProductStore handles all product-related database operations, including
// the one parameterized search used by the category, brand, and global
// search pages. The original handlers each built this query by hand;
// keeping a single builder stops the three copies from drifting.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, sku, price, in_stock, featured, short_desc, long_desc,
	cover_image, category_id, brand_id, created_at, updated_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Price, &p.InStock, &p.Featured,
		&p.ShortDesc, &p.LongDesc, &p.CoverImage,
		&p.CategoryID, &p.BrandID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// uuidStrings converts ids for a $n::uuid[] parameter.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// buildWhere translates a catalog.Filter into a WHERE clause and its
// arguments. Free-text tokens combine with AND; within one token the
// searchable fields (name, short/long description, SKU) combine with OR.
// Price bounds only ever match rows with a non-NULL price.
func buildWhere(f catalog.Filter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.CategoryIDs) > 0 {
		conds = append(conds, fmt.Sprintf("category_id = ANY(%s::uuid[])", arg(uuidStrings(f.CategoryIDs))))
	}
	if f.BrandID != nil {
		conds = append(conds, fmt.Sprintf("brand_id = %s", arg(*f.BrandID)))
	}
	switch f.Stock {
	case catalog.StockIn:
		conds = append(conds, "in_stock")
	case catalog.StockOut:
		conds = append(conds, "NOT in_stock")
	}
	if f.PriceMin != nil {
		conds = append(conds, fmt.Sprintf("price IS NOT NULL AND price >= %s", arg(*f.PriceMin)))
	}
	if f.PriceMax != nil {
		conds = append(conds, fmt.Sprintf("price IS NOT NULL AND price <= %s", arg(*f.PriceMax)))
	}
	if f.SKU != "" {
		conds = append(conds, fmt.Sprintf("sku ILIKE %s", arg("%"+f.SKU+"%")))
	}
	for _, token := range f.Tokens() {
		like := arg("%" + token + "%")
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE %[1]s OR short_desc ILIKE %[1]s OR long_desc ILIKE %[1]s OR sku ILIKE %[1]s)",
			like,
		))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Search returns the products matching the filter, newest first, sliced to
// the requested page, plus the total match count. The count is computed
// against the whole filtered set, independent of the page slice.
func (s *ProductStore) Search(f catalog.Filter, page catalog.Pagination) ([]models.Product, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page = page.Paginate(total)
	query := `SELECT ` + productColumns + ` FROM products` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.db.Query(query, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// ListLatest returns the most recently created products for the homepage.
func (s *ProductStore) ListLatest(limit int) ([]models.Product, error) {
	return s.listSimple(`SELECT `+productColumns+` FROM products ORDER BY created_at DESC LIMIT $1`, limit)
}

// ListFeatured returns featured products, most recently touched first.
func (s *ProductStore) ListFeatured(limit int) ([]models.Product, error) {
	return s.listSimple(`
		SELECT `+productColumns+` FROM products
		WHERE featured
		ORDER BY updated_at DESC, created_at DESC
		LIMIT $1`, limit)
}

func (s *ProductStore) listSimple(query string, args ...any) ([]models.Product, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a product by ID. Returns nil if not found.
func (s *ProductStore) FindByID(id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// FindByIDs returns the products for the given ids, unknown ones skipped.
// Serves the JSON API's ids mode, which hydrates client-side widgets.
func (s *ProductStore) FindByIDs(ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.listSimple(
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1::uuid[])`,
		uuidStrings(ids),
	)
}

// CategoryIDsForBrand returns the distinct category ids that contain at
// least one product of the brand. Limits the category filter on brand
// pages to options that can match.
func (s *ProductStore) CategoryIDsForBrand(brandID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT category_id FROM products
		WHERE brand_id = $1 AND category_id IS NOT NULL
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("list brand categories: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the total number of products.
func (s *ProductStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// ProductInput carries the validated fields for a create or update. The
// caller (admin handler) has already parsed the price fail-closed.
type ProductInput struct {
	Name       string
	SKU        *string
	Price      *decimal.Decimal
	InStock    bool
	ShortDesc  *string
	LongDesc   *string
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
}

// Create inserts a new product and returns it.
func (s *ProductStore) Create(in ProductInput) (*models.Product, error) {
	row := s.db.QueryRow(`
		INSERT INTO products (name, sku, price, in_stock, short_desc, long_desc, category_id, brand_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		in.Name, in.SKU, in.Price, in.InStock, in.ShortDesc, in.LongDesc, in.CategoryID, in.BrandID,
	)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update modifies an existing product.
func (s *ProductStore) Update(id uuid.UUID, in ProductInput) (*models.Product, error) {
	row := s.db.QueryRow(`
		UPDATE products SET
			name = $1, sku = $2, price = $3, in_stock = $4,
			short_desc = $5, long_desc = $6, category_id = $7, brand_id = $8,
			updated_at = NOW()
		WHERE id = $9
		RETURNING `+productColumns,
		in.Name, in.SKU, in.Price, in.InStock, in.ShortDesc, in.LongDesc, in.CategoryID, in.BrandID, id,
	)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// BulkCreate inserts a batch of products in one transaction. The batch
// either fully commits or fully rolls back; a uniqueness conflict aborts
// the whole batch and names the colliding row. Returns the number created.
func (s *ProductStore) BulkCreate(inputs []ProductInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO products (name, sku, price, in_stock, short_desc, long_desc, category_id, brand_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return 0, fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	created := 0
	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			continue
		}
		_, err := stmt.Exec(in.Name, in.SKU, in.Price, in.InStock, in.ShortDesc, in.LongDesc, in.CategoryID, in.BrandID)
		if err != nil {
			value := in.Name
			if in.SKU != nil {
				value = *in.SKU
			}
			return 0, conflictOr(err, "bulk insert product", value)
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk insert: %w", err)
	}
	return created, nil
}

// ToggleFeatured flips a product's featured flag and returns the new state.
func (s *ProductStore) ToggleFeatured(id uuid.UUID) (bool, error) {
	var featured bool
	err := s.db.QueryRow(`
		UPDATE products SET featured = NOT featured, updated_at = NOW()
		WHERE id = $1 RETURNING featured
	`, id).Scan(&featured)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle featured: %w", err)
	}
	return featured, nil
}

// Delete removes a product. Gallery rows go with it (ON DELETE CASCADE).
func (s *ProductStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
