// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
)

func mkBrand(t *testing.T, db *sql.DB, s *BrandStore, name string, visible bool) uuid.UUID {
	t.Helper()
	b, err := s.Create(name, visible)
	if err != nil {
		t.Fatalf("create brand %q: %v", name, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM brands WHERE id = $1", b.ID) })
	return b.ID
}

func TestBrandVisibility(t *testing.T) {
	db := testDB(t)
	s := NewBrandStore(db)

	shownID := mkBrand(t, db, s, "Marca Visible Test", true)
	hiddenID := mkBrand(t, db, s, "Marca Oculta Test", false)

	visible, err := s.ListVisible()
	if err != nil {
		t.Fatalf("ListVisible: %v", err)
	}
	var foundShown, foundHidden bool
	for _, b := range visible {
		if b.ID == shownID {
			foundShown = true
		}
		if b.ID == hiddenID {
			foundHidden = true
		}
	}
	if !foundShown {
		t.Error("visible brand missing from ListVisible")
	}
	if foundHidden {
		t.Error("hidden brand returned by ListVisible")
	}

	// The public slug lookup only resolves visible brands.
	hidden, err := s.FindByID(hiddenID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got, err := s.FindVisibleBySlug(hidden.Slug); err != nil {
		t.Fatalf("FindVisibleBySlug: %v", err)
	} else if got != nil {
		t.Error("hidden brand resolved by public slug lookup")
	}
}

func TestBrandToggleVisible(t *testing.T) {
	db := testDB(t)
	s := NewBrandStore(db)

	id := mkBrand(t, db, s, "Marca Toggle Test", true)

	if visible, err := s.ToggleVisible(id); err != nil || visible {
		t.Fatalf("first toggle: visible=%v err=%v, want false", visible, err)
	}
	if visible, err := s.ToggleVisible(id); err != nil || !visible {
		t.Fatalf("second toggle: visible=%v err=%v, want true", visible, err)
	}
	if _, err := s.ToggleVisible(uuid.New()); err != ErrNotFound {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestBrandDeleteGuard(t *testing.T) {
	db := testDB(t)
	brands := NewBrandStore(db)
	products := NewProductStore(db)

	brandID := mkBrand(t, db, brands, "Marca Guardada Test", true)
	productID := mkProduct(t, db, products, ProductInput{Name: "Producto de Marca Test", BrandID: &brandID})

	if err := brands.Delete(brandID); !IsInvalidOp(err) {
		t.Errorf("delete brand with products: got %v, want InvalidOpError", err)
	}

	if err := products.Delete(productID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if err := brands.Delete(brandID); err != nil {
		t.Errorf("delete unreferenced brand: %v", err)
	}
	if err := brands.Delete(brandID); err != ErrNotFound {
		t.Errorf("delete again: got %v, want ErrNotFound", err)
	}
}

func TestBrandListByCategoryIDs(t *testing.T) {
	db := testDB(t)
	brands := NewBrandStore(db)
	products := NewProductStore(db)
	categories := NewCategoryStore(db)

	catID := mkCategory(t, categories, "Abrasivos Test", nil)
	otherCatID := mkCategory(t, categories, "Adhesivos Test", nil)
	t.Cleanup(func() { cleanCategories(t, db, catID, otherCatID) })
	inBrand := mkBrand(t, db, brands, "Marca Abrasivos Test", true)
	outBrand := mkBrand(t, db, brands, "Marca Adhesivos Test", true)

	mkProduct(t, db, products, ProductInput{Name: "Disco de Corte Test", CategoryID: &catID, BrandID: &inBrand})
	mkProduct(t, db, products, ProductInput{Name: "Pegamento Test", CategoryID: &otherCatID, BrandID: &outBrand})

	got, err := brands.ListByCategoryIDs([]uuid.UUID{catID})
	if err != nil {
		t.Fatalf("ListByCategoryIDs: %v", err)
	}
	var foundIn, foundOut bool
	for _, b := range got {
		if b.ID == inBrand {
			foundIn = true
		}
		if b.ID == outBrand {
			foundOut = true
		}
	}
	if !foundIn {
		t.Error("brand with products in the category scope is missing")
	}
	if foundOut {
		t.Error("brand outside the category scope was returned")
	}

	// An empty scope short-circuits to no brands.
	if got, err := brands.ListByCategoryIDs(nil); err != nil || got != nil {
		t.Errorf("empty scope: got %v, %v", got, err)
	}
}
