// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"ferrecms/internal/catalog"
	"ferrecms/internal/models"
	"ferrecms/internal/render"
	"ferrecms/internal/storage"
	"ferrecms/internal/store"
)

// ProductsList renders the product management table with the same filter
// pipeline the public pages use, scoped subtree included.
func (a *Admin) ProductsList(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ParseFilter(r.URL.Query())

	var filterCategory *uuid.UUID
	if catID, ok := catalog.ParseUUID(r.URL.Query().Get("category")); ok {
		filterCategory = &catID
		if subtree, err := a.categoryStore.SubtreeIDs(catID); err == nil {
			filter.CategoryIDs = subtree
		}
	}

	page := catalog.ParsePagination(r.URL.Query())
	products, total, err := a.productStore.Search(filter, page)
	if err != nil {
		slog.Error("admin product search failed", "error", err)
	}
	page = page.Paginate(total)

	// Resolve category and brand names for the table.
	a.fillNames(products)

	tree, _ := a.categoryStore.FlatTree()
	brands, _ := a.brandStore.List()

	data := a.adminData()
	data["products"] = products
	data["page"] = page
	data["tree"] = tree
	data["brands"] = brands
	data["query"] = filter.Text
	data["sku"] = filter.SKU
	data["filterCategory"] = filterCategory
	data["filterBrand"] = filter.BrandID
	data["filterStock"] = string(filter.Stock)

	a.renderer.Page(w, r, "products", &render.PageData{
		Title:   "Productos",
		Section: "products",
		Data:    data,
	})
}

// fillNames populates the display-only category and brand names on a
// product page slice.
func (a *Admin) fillNames(products []models.Product) {
	cats, err := a.categoryStore.List()
	if err != nil {
		return
	}
	brands, err := a.brandStore.List()
	if err != nil {
		return
	}

	catNames := make(map[uuid.UUID]string, len(cats))
	for _, c := range cats {
		catNames[c.ID] = c.Name
	}
	brandNames := make(map[uuid.UUID]string, len(brands))
	for _, b := range brands {
		brandNames[b.ID] = b.Name
	}

	for i := range products {
		if products[i].CategoryID != nil {
			if name, ok := catNames[*products[i].CategoryID]; ok {
				products[i].CategoryName = &name
			}
		}
		if products[i].BrandID != nil {
			if name, ok := brandNames[*products[i].BrandID]; ok {
				products[i].BrandName = &name
			}
		}
	}
}

// ProductNew renders the empty product form.
func (a *Admin) ProductNew(w http.ResponseWriter, r *http.Request) {
	a.productForm(w, r, nil, nil)
}

// ProductEdit renders the product form with the gallery section.
func (a *Admin) ProductEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	product, err := a.productStore.FindByID(id)
	if err != nil || product == nil {
		http.NotFound(w, r)
		return
	}

	a.productForm(w, r, product, nil)
}

// productForm renders the product create/edit form.
func (a *Admin) productForm(w http.ResponseWriter, r *http.Request, product *models.Product, flashes []render.Flash) {
	tree, _ := a.categoryStore.FlatTree()
	brands, _ := a.brandStore.List()

	data := a.adminData()
	data["tree"] = tree
	data["brands"] = brands
	data["action"] = "/admin/products"
	data["priceStr"] = ""

	title := "Nuevo producto"
	if product != nil {
		title = "Editar producto"
		data["product"] = product
		data["action"] = fmt.Sprintf("/admin/products/%s", product.ID)
		if product.Price != nil {
			data["priceStr"] = render.FormatPrice(*product.Price)
		}
		if images, err := a.imageStore.ListByProduct(product.ID); err == nil {
			data["images"] = images
		}
	}

	a.renderer.Page(w, r, "product_form", &render.PageData{
		Title:   title,
		Section: "products",
		Flashes: flashes,
		Data:    data,
	})
}

// parseProductForm reads and validates the product form fields. Unlike
// the public filter parser, the price here is fail-closed: a non-empty
// value that does not parse is a validation error, not a silent nil.
func parseProductForm(r *http.Request) (store.ProductInput, string) {
	var in store.ProductInput

	in.Name = strings.TrimSpace(r.FormValue("name"))
	if msg := validateProduct(in.Name); msg != "" {
		return in, msg
	}

	if sku := strings.TrimSpace(r.FormValue("sku")); sku != "" {
		in.SKU = &sku
	}

	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price := catalog.ParsePrice(raw)
		if price == nil {
			return in, "El precio no es válido. Usá el formato 1.234,56."
		}
		if price.IsNegative() {
			return in, "El precio no puede ser negativo."
		}
		in.Price = price
	}

	in.InStock = r.FormValue("in_stock") != ""

	if sd := strings.TrimSpace(r.FormValue("short_desc")); sd != "" {
		in.ShortDesc = &sd
	}
	if ld := strings.TrimSpace(r.FormValue("long_desc")); ld != "" {
		in.LongDesc = &ld
	}
	if id, ok := catalog.ParseUUID(r.FormValue("category_id")); ok {
		in.CategoryID = &id
	}
	if id, ok := catalog.ParseUUID(r.FormValue("brand_id")); ok {
		in.BrandID = &id
	}

	return in, ""
}

// ProductCreate handles the new product form submission.
func (a *Admin) ProductCreate(w http.ResponseWriter, r *http.Request) {
	in, msg := parseProductForm(r)
	if msg != "" {
		a.productForm(w, r, nil, []render.Flash{{Type: "error", Message: msg}})
		return
	}

	product, err := a.productStore.Create(in)
	if err != nil {
		slog.Error("product create failed", "name", in.Name, "error", err)
		a.productForm(w, r, nil, []render.Flash{{Type: "error", Message: storeErrorMessage(err)}})
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, fmt.Sprintf("/admin/products/%s/edit", product.ID), http.StatusSeeOther)
}

// ProductUpdate handles the product edit form submission.
func (a *Admin) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	existing, err := a.productStore.FindByID(id)
	if err != nil || existing == nil {
		http.NotFound(w, r)
		return
	}

	in, msg := parseProductForm(r)
	if msg != "" {
		a.productForm(w, r, existing, []render.Flash{{Type: "error", Message: msg}})
		return
	}

	if _, err := a.productStore.Update(id, in); err != nil {
		slog.Error("product update failed", "id", id, "error", err)
		a.productForm(w, r, existing, []render.Flash{{Type: "error", Message: storeErrorMessage(err)}})
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, fmt.Sprintf("/admin/products/%s/edit", id), http.StatusSeeOther)
}

// ProductFeature toggles the featured flag.
func (a *Admin) ProductFeature(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := a.productStore.ToggleFeatured(id); err != nil {
		slog.Error("product feature toggle failed", "id", id, "error", err)
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// ProductDelete removes a product. Gallery rows cascade in the schema;
// stored images are deleted from object storage best-effort.
func (a *Admin) ProductDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if a.storageClient != nil {
		if images, err := a.imageStore.ListByProduct(id); err == nil {
			for _, img := range images {
				a.deleteStored(r, img.Filename)
			}
		}
	}

	if err := a.productStore.Delete(id); err != nil {
		slog.Error("product delete failed", "id", id, "error", err)
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// deleteStored removes a stored object by its public URL, best-effort.
func (a *Admin) deleteStored(r *http.Request, fileURL string) {
	if a.storageClient == nil {
		return
	}
	// Stored filenames are full public URLs; strip back to the object key.
	prefix := a.storageClient.FileURL("")
	key := strings.TrimPrefix(fileURL, prefix)
	if key == fileURL {
		return
	}
	if err := a.storageClient.Delete(r.Context(), key); err != nil {
		slog.Warn("storage delete failed", "key", key, "error", err)
	}
}

// --- Gallery ---

// galleryUploadPlan splits submitted files into the ones that fit the
// gallery cap and the count that do not. Over-cap files are never
// uploaded, so they cannot strand objects in storage.
func galleryUploadPlan(current int, files []*multipart.FileHeader) ([]*multipart.FileHeader, int) {
	room := models.MaxGalleryImages - current
	if room < 0 {
		room = 0
	}
	if len(files) <= room {
		return files, 0
	}
	return files[:room], len(files) - room
}

// ProductImagesAdd uploads new gallery images. Files beyond the gallery
// cap are skipped, not errors; the skip count is reported to the admin.
func (a *Admin) ProductImagesAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	product, err := a.productStore.FindByID(id)
	if err != nil || product == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}

	current := 0
	if images, err := a.imageStore.ListByProduct(id); err == nil {
		current = len(images)
	}
	files, skipped := galleryUploadPlan(current, files)

	var filenames []string
	if a.storageClient != nil {
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				continue
			}
			key, err := a.storageClient.Upload(
				r.Context(), storage.FolderProducts, fh.Filename,
				fh.Header.Get("Content-Type"), f, fh.Size,
			)
			f.Close()
			if err != nil {
				slog.Warn("product image upload failed", "file", fh.Filename, "error", err)
				continue
			}
			filenames = append(filenames, a.storageClient.FileURL(key))
		}
	}

	added, raceSkipped, err := a.imageStore.Append(id, filenames)
	if err != nil {
		slog.Error("gallery append failed", "product", id, "error", err)
	}
	if raceSkipped > 0 {
		// A concurrent upload filled the gallery first; the rejected
		// uploads are already stored, so drop them again.
		for _, url := range filenames[len(filenames)-raceSkipped:] {
			a.deleteStored(r, url)
		}
		skipped += raceSkipped
	}

	a.invalidateCatalog(r)

	if skipped > 0 {
		slog.Info("gallery at capacity, files skipped", "product", id, "added", added, "skipped", skipped)
		product, ferr := a.productStore.FindByID(id)
		if ferr == nil && product != nil {
			msg := fmt.Sprintf("Se omitieron %d imágenes: la galería admite hasta %d.", skipped, models.MaxGalleryImages)
			if skipped == 1 {
				msg = fmt.Sprintf("Se omitió 1 imagen: la galería admite hasta %d.", models.MaxGalleryImages)
			}
			a.productForm(w, r, product, []render.Flash{{Type: "warning", Message: msg}})
			return
		}
	}

	http.Redirect(w, r, fmt.Sprintf("/admin/products/%s/edit", id), http.StatusSeeOther)
}

// ProductImageDelete removes one gallery image and its stored object.
func (a *Admin) ProductImageDelete(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	imageID, ok := parseIDParam(w, r, "imageID")
	if !ok {
		return
	}

	filename, err := a.imageStore.Remove(productID, imageID)
	if err != nil {
		slog.Error("gallery remove failed", "product", productID, "image", imageID, "error", err)
	} else {
		a.deleteStored(r, filename)
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, fmt.Sprintf("/admin/products/%s/edit", productID), http.StatusSeeOther)
}

// ProductImagesReorder applies a submitted gallery ordering. The store
// rejects orderings that are not an exact permutation of the gallery.
func (a *Admin) ProductImagesReorder(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var ordered []uuid.UUID
	for _, raw := range r.PostForm["order"] {
		if id, ok := catalog.ParseUUID(raw); ok {
			ordered = append(ordered, id)
		}
	}

	if err := a.imageStore.Reorder(productID, ordered); err != nil {
		slog.Warn("gallery reorder rejected", "product", productID, "error", err)
		product, ferr := a.productStore.FindByID(productID)
		if ferr == nil && product != nil {
			a.productForm(w, r, product, []render.Flash{{Type: "error", Message: storeErrorMessage(err)}})
			return
		}
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, fmt.Sprintf("/admin/products/%s/edit", productID), http.StatusSeeOther)
}

// --- CSV import ---

// csvColumns is the expected column count: name, sku, price, category,
// brand, short description, in stock.
const csvColumns = 7

// ProductImportForm renders the CSV import page.
func (a *Admin) ProductImportForm(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "product_import", &render.PageData{
		Title:   "Importar productos",
		Section: "products",
		Data:    a.adminData(),
	})
}

// ProductImport parses an uploaded CSV and bulk-creates products in a
// single transaction. Category and brand cells match by name,
// case-insensitively; unknown names leave the product unassigned. Rows
// with an empty name are skipped. Prices use the local format and parse
// fail-open: an unreadable price imports the product without one.
func (a *Admin) ProductImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		a.importError(w, r, "No se pudo leer el archivo.")
		return
	}
	defer file.Close()

	cats, _ := a.categoryStore.List()
	brands, _ := a.brandStore.List()

	catByName := make(map[string]uuid.UUID, len(cats))
	for _, c := range cats {
		catByName[strings.ToLower(c.Name)] = c.ID
	}
	brandByName := make(map[string]uuid.UUID, len(brands))
	for _, b := range brands {
		brandByName[strings.ToLower(b.Name)] = b.ID
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var inputs []store.ProductInput
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			a.importError(w, r, fmt.Sprintf("El CSV no es válido (línea %d).", line+1))
			return
		}
		line++

		// Skip a header row if present.
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "nombre") {
			continue
		}

		for len(record) < csvColumns {
			record = append(record, "")
		}

		in := store.ProductInput{Name: strings.TrimSpace(record[0])}
		if in.Name == "" {
			continue
		}
		if sku := strings.TrimSpace(record[1]); sku != "" {
			in.SKU = &sku
		}
		in.Price = catalog.ParsePrice(record[2])
		if id, ok := catByName[strings.ToLower(strings.TrimSpace(record[3]))]; ok {
			catID := id
			in.CategoryID = &catID
		}
		if id, ok := brandByName[strings.ToLower(strings.TrimSpace(record[4]))]; ok {
			brandID := id
			in.BrandID = &brandID
		}
		if sd := strings.TrimSpace(record[5]); sd != "" {
			in.ShortDesc = &sd
		}
		in.InStock = parseBoolCell(record[6])

		inputs = append(inputs, in)
	}

	if len(inputs) == 0 {
		a.importError(w, r, "El archivo no contiene productos.")
		return
	}

	created, err := a.productStore.BulkCreate(inputs)
	if err != nil {
		slog.Error("bulk import failed", "rows", len(inputs), "error", err)
		a.importError(w, r, storeErrorMessage(err))
		return
	}

	slog.Info("products imported", "created", created)
	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// parseBoolCell accepts the spellings spreadsheets produce for a yes.
func parseBoolCell(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "si", "sí", "yes", "true", "x":
		return true
	}
	return false
}

// importError re-renders the import form with an error flash.
func (a *Admin) importError(w http.ResponseWriter, r *http.Request, msg string) {
	a.renderer.Page(w, r, "product_import", &render.PageData{
		Title:   "Importar productos",
		Section: "products",
		Flashes: []render.Flash{{Type: "error", Message: msg}},
		Data:    a.adminData(),
	})
}
