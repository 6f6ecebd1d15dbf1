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

// CategoryStore manages the catalog tree in the database. Nodes live in a
// flat table keyed by id with a nullable parent_id; child lists and
// subtree sets are recomputed on demand rather than held as live object
// references.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, parent_id, created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name, with product counts.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.parent_id, c.created_at,
		       COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.CreatedAt, &c.ProductCount)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Roots returns top-level categories ordered by name.
func (s *CategoryStore) Roots() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryColumns + ` FROM categories WHERE parent_id IS NULL ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list root categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Tree returns categories as a nested tree structure.
func (s *CategoryStore) Tree() ([]models.Category, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}
	return buildTree(flat, nil, 0), nil
}

// buildTree recursively builds a tree from a flat list.
func buildTree(flat []models.Category, parentID *uuid.UUID, depth int) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if ptrEqual(c.ParentID, parentID) {
			c.Depth = depth
			c.Children = buildTree(flat, &c.ID, depth+1)
			result = append(result, c)
		}
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// FlatTree returns categories as a flat list ordered for display, with
// Depth set for indentation. Useful for <select> dropdowns.
func (s *CategoryStore) FlatTree() ([]models.Category, error) {
	tree, err := s.Tree()
	if err != nil {
		return nil, err
	}
	var result []models.Category
	flattenTree(tree, &result)
	return result, nil
}

// flattenTree walks a category tree depth-first, appending to result.
func flattenTree(cats []models.Category, result *[]models.Category) {
	for _, c := range cats {
		*result = append(*result, c)
		if len(c.Children) > 0 {
			flattenTree(c.Children, result)
		}
	}
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by its slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(categorySlug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, categorySlug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// FindByIDs retrieves categories for a set of ids, ordered by name. Used
// by the brand page to show which categories a brand's products span.
func (s *CategoryStore) FindByIDs(ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ANY($1::uuid[]) ORDER BY name`,
		uuidStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("find categories by ids: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}

// parentIndex loads the whole tree as an id → parent_id map. The table
// stays small (a storefront has tens of categories), so one scan per
// traversal beats a recursive CTE for clarity.
func (s *CategoryStore) parentIndex() (map[uuid.UUID]*uuid.UUID, error) {
	rows, err := s.db.Query(`SELECT id, parent_id FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("load category index: %w", err)
	}
	defer rows.Close()

	index := make(map[uuid.UUID]*uuid.UUID)
	for rows.Next() {
		var id uuid.UUID
		var parentID *uuid.UUID
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, fmt.Errorf("scan category index: %w", err)
		}
		index[id] = parentID
	}
	return index, rows.Err()
}

// SubtreeIDs returns the root id plus every descendant id, walked with an
// explicit stack. A visited set guards the traversal so it terminates even
// if the stored data is (incorrectly) cyclic.
func (s *CategoryStore) SubtreeIDs(root uuid.UUID) ([]uuid.UUID, error) {
	index, err := s.parentIndex()
	if err != nil {
		return nil, err
	}
	if _, ok := index[root]; !ok {
		return nil, ErrNotFound
	}
	return subtreeIDs(index, root), nil
}

// subtreeIDs collects root and all transitive children from a parent index.
func subtreeIDs(index map[uuid.UUID]*uuid.UUID, root uuid.UUID) []uuid.UUID {
	children := make(map[uuid.UUID][]uuid.UUID, len(index))
	for id, parentID := range index {
		if parentID != nil {
			children[*parentID] = append(children[*parentID], id)
		}
	}

	visited := map[uuid.UUID]bool{root: true}
	ids := []uuid.UUID{root}
	stack := append([]uuid.UUID(nil), children[root]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		ids = append(ids, id)
		stack = append(stack, children[id]...)
	}
	return ids
}

// WouldCreateCycle reports whether setting candidateParent as the parent
// of node would make node its own ancestor. True when candidateParent is
// node itself or lies anywhere inside node's subtree.
func (s *CategoryStore) WouldCreateCycle(node, candidateParent uuid.UUID) (bool, error) {
	if node == candidateParent {
		return true, nil
	}
	ids, err := s.SubtreeIDs(node)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == candidateParent {
			return true, nil
		}
	}
	return false, nil
}

// Breadcrumbs walks parent references upward from the given category and
// returns the trail in root-to-node order. Ancestors carry category page
// links; the final element is the current page and has no link. The
// visited guard keeps a corrupt (cyclic) chain from looping.
func (s *CategoryStore) Breadcrumbs(id uuid.UUID) ([]models.Crumb, error) {
	cat, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}

	chain := []models.Category{*cat}
	visited := map[uuid.UUID]bool{cat.ID: true}
	for cat.ParentID != nil {
		parent, err := s.FindByID(*cat.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		chain = append(chain, *parent)
		cat = parent
	}

	crumbs := make([]models.Crumb, 0, len(chain))
	for i := len(chain) - 1; i > 0; i-- {
		crumbs = append(crumbs, models.Crumb{Name: chain[i].Name, URL: "/c/" + chain[i].Slug})
	}
	crumbs = append(crumbs, models.Crumb{Name: chain[0].Name})
	return crumbs, nil
}

// slugTaken reports whether a slug is already used by a category other
// than excludeID. Used when renaming so a category can keep its own slug.
func (s *CategoryStore) slugTaken(candidate string, excludeID uuid.UUID) bool {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`,
		candidate, excludeID,
	).Scan(&exists)
	if err != nil {
		// Treat a failed lookup as taken; the unique index is the final
		// authority and will reject a real collision at commit.
		return true
	}
	return exists
}

// Create inserts a new category with a slug derived from its name. The
// parent, when given, must exist. Slug collisions against concurrent
// writers surface as a ConflictError.
func (s *CategoryStore) Create(name string, parentID *uuid.UUID) (*models.Category, error) {
	if parentID != nil {
		parent, err := s.FindByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
	}

	categorySlug := slug.Unique(slug.Generate(name), func(candidate string) bool {
		return s.slugTaken(candidate, uuid.Nil)
	})

	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, parent_id)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		name, categorySlug, parentID,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, conflictOr(err, "create category", categorySlug)
	}
	return result, nil
}

// Update renames and/or reparents a category. The slug is recomputed from
// the new name and re-uniqued (the category may keep its current slug).
// Reparenting is validated for cycles before anything is written.
func (s *CategoryStore) Update(id uuid.UUID, name string, parentID *uuid.UUID) (*models.Category, error) {
	current, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}

	if parentID != nil {
		if *parentID == id {
			return nil, &InvalidOpError{Reason: "a category cannot be its own parent"}
		}
		parent, err := s.FindByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
		cycle, err := s.WouldCreateCycle(id, *parentID)
		if err != nil {
			return nil, err
		}
		if cycle {
			return nil, &InvalidOpError{Reason: fmt.Sprintf("cannot make %q a child of its own descendant %q", current.Name, parent.Name)}
		}
	}

	categorySlug := slug.Unique(slug.Generate(name), func(candidate string) bool {
		return s.slugTaken(candidate, id)
	})

	row := s.db.QueryRow(`
		UPDATE categories SET name = $1, slug = $2, parent_id = $3
		WHERE id = $4
		RETURNING `+categoryColumns,
		name, categorySlug, parentID, id,
	)
	result, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, conflictOr(err, "update category", categorySlug)
	}
	return result, nil
}

// Delete removes a childless, productless category. A category that still
// has subcategories or products is rejected with an InvalidOpError.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	var children, products int
	err := s.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM categories WHERE parent_id = $1),
		       (SELECT COUNT(*) FROM products WHERE category_id = $1)
	`, id).Scan(&children, &products)
	if err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if children > 0 {
		return &InvalidOpError{Reason: "category has subcategories"}
	}
	if products > 0 {
		return &InvalidOpError{Reason: "category has products"}
	}

	res, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
