// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ferrecms/internal/models"
	"ferrecms/internal/render"
	"ferrecms/internal/storage"
)

// --- Slides ---

// SlidesList renders the carousel management page.
func (a *Admin) SlidesList(w http.ResponseWriter, r *http.Request) {
	slides, err := a.slideStore.List()
	if err != nil {
		slog.Error("list slides failed", "error", err)
	}

	data := a.adminData()
	data["slides"] = slides

	a.renderer.Page(w, r, "slides", &render.PageData{
		Title:   "Slides",
		Section: "slides",
		Data:    data,
	})
}

// SlidesUpload stores uploaded carousel images and appends them after the
// current highest sort order, visible by default.
func (a *Admin) SlidesUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var filenames []string
	if a.storageClient != nil && r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			f, err := fh.Open()
			if err != nil {
				continue
			}
			key, err := a.storageClient.Upload(
				r.Context(), storage.FolderSlides, fh.Filename,
				fh.Header.Get("Content-Type"), f, fh.Size,
			)
			f.Close()
			if err != nil {
				slog.Warn("slide upload failed", "file", fh.Filename, "error", err)
				continue
			}
			filenames = append(filenames, a.storageClient.FileURL(key))
		}
	}

	if len(filenames) > 0 {
		if _, err := a.slideStore.BulkCreate(filenames); err != nil {
			slog.Error("slide create failed", "error", err)
		}
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/slides", http.StatusSeeOther)
}

// SlideEdit renders the per-slide edit form.
func (a *Admin) SlideEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	slide, err := a.slideStore.FindByID(id)
	if err != nil || slide == nil {
		http.NotFound(w, r)
		return
	}

	a.slideForm(w, r, slide, nil)
}

// SlideUpdate handles the slide edit form: sort order, visibility, and an
// optional replacement image. Replacing the image drops the old stored
// object.
func (a *Admin) SlideUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	slide, err := a.slideStore.FindByID(id)
	if err != nil || slide == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sortOrder, err := strconv.Atoi(strings.TrimSpace(r.FormValue("sort_order")))
	if err != nil {
		a.slideForm(w, r, slide, []render.Flash{{Type: "error", Message: "El orden debe ser un número."}})
		return
	}
	visible := r.FormValue("visible") != ""

	var filename *string
	if a.storageClient != nil && r.MultipartForm != nil {
		if fhs := r.MultipartForm.File["image"]; len(fhs) > 0 {
			fh := fhs[0]
			f, err := fh.Open()
			if err == nil {
				key, err := a.storageClient.Upload(
					r.Context(), storage.FolderSlides, fh.Filename,
					fh.Header.Get("Content-Type"), f, fh.Size,
				)
				f.Close()
				if err != nil {
					slog.Warn("slide image replace failed", "file", fh.Filename, "error", err)
				} else {
					url := a.storageClient.FileURL(key)
					filename = &url
					a.deleteStored(r, slide.Filename)
				}
			}
		}
	}

	if err := a.slideStore.Update(id, sortOrder, visible, filename); err != nil {
		slog.Error("slide update failed", "id", id, "error", err)
		a.slideForm(w, r, slide, []render.Flash{{Type: "error", Message: storeErrorMessage(err)}})
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/slides", http.StatusSeeOther)
}

// slideForm renders the slide edit form.
func (a *Admin) slideForm(w http.ResponseWriter, r *http.Request, slide *models.Slide, flashes []render.Flash) {
	data := a.adminData()
	data["slide"] = slide

	a.renderer.Page(w, r, "slide_form", &render.PageData{
		Title:   "Editar slide",
		Section: "slides",
		Flashes: flashes,
		Data:    data,
	})
}

// SlideToggle flips a slide's visibility in the carousel.
func (a *Admin) SlideToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := a.slideStore.ToggleVisible(id); err != nil {
		slog.Error("slide toggle failed", "id", id, "error", err)
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/slides", http.StatusSeeOther)
}

// SlideDelete removes a slide record and its stored image.
func (a *Admin) SlideDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	slide, err := a.slideStore.FindByID(id)
	if err == nil && slide != nil {
		a.deleteStored(r, slide.Filename)
	}

	if err := a.slideStore.Delete(id); err != nil {
		slog.Error("slide delete failed", "id", id, "error", err)
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/slides", http.StatusSeeOther)
}

// --- Site info ---

// SiteInfoForm renders the store settings page.
func (a *Admin) SiteInfoForm(w http.ResponseWriter, r *http.Request) {
	site, err := a.siteStore.Get()
	if err != nil {
		slog.Error("load site info failed", "error", err)
	}

	data := a.adminData()
	data["site"] = site

	a.renderer.Page(w, r, "site_info", &render.PageData{
		Title:   "Información del sitio",
		Section: "site",
		Data:    data,
	})
}

// SiteInfoSave upserts the single store settings record. The inquiries
// flag is not part of this form and keeps its current value.
func (a *Admin) SiteInfoSave(w http.ResponseWriter, r *http.Request) {
	si := &models.SiteInfo{
		StoreName: strings.TrimSpace(r.FormValue("store_name")),
		Address:   strings.TrimSpace(r.FormValue("address")),
		Hours:     strings.TrimSpace(r.FormValue("hours")),
	}
	if si.StoreName == "" {
		a.siteInfoError(w, r, "El nombre del sitio es obligatorio.")
		return
	}

	for field, target := range map[string]**string{
		"email":     &si.Email,
		"phone":     &si.Phone,
		"instagram": &si.Instagram,
		"whatsapp":  &si.WhatsApp,
	} {
		if v := strings.TrimSpace(r.FormValue(field)); v != "" {
			*target = &v
		}
	}

	if _, err := a.siteStore.Upsert(si); err != nil {
		slog.Error("site info save failed", "error", err)
		a.siteInfoError(w, r, "Ocurrió un error inesperado.")
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/site", http.StatusSeeOther)
}

// SiteInquiriesToggle flips the public inquiry feature flag.
func (a *Admin) SiteInquiriesToggle(w http.ResponseWriter, r *http.Request) {
	if _, err := a.siteStore.ToggleInquiries(); err != nil {
		slog.Error("inquiries toggle failed", "error", err)
		a.siteInfoError(w, r, storeErrorMessage(err))
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/site", http.StatusSeeOther)
}

// siteInfoError re-renders the settings page with an error flash.
func (a *Admin) siteInfoError(w http.ResponseWriter, r *http.Request, msg string) {
	site, _ := a.siteStore.Get()

	data := a.adminData()
	data["site"] = site

	a.renderer.Page(w, r, "site_info", &render.PageData{
		Title:   "Información del sitio",
		Section: "site",
		Flashes: []render.Flash{{Type: "error", Message: msg}},
		Data:    data,
	})
}

// --- Inquiries ---

// InquiriesList renders the inquiry inbox, unread first.
func (a *Admin) InquiriesList(w http.ResponseWriter, r *http.Request) {
	inquiries, err := a.inquiryStore.List()
	if err != nil {
		slog.Error("list inquiries failed", "error", err)
	}

	data := a.adminData()
	data["inquiries"] = inquiries

	a.renderer.Page(w, r, "inquiries", &render.PageData{
		Title:   "Consultas",
		Section: "inquiries",
		Data:    data,
	})
}

// InquiryDetail renders one inquiry and marks it read on first open.
func (a *Admin) InquiryDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	inquiry, err := a.inquiryStore.FindByID(id)
	if err != nil || inquiry == nil {
		http.NotFound(w, r)
		return
	}

	if !inquiry.Read() {
		if err := a.inquiryStore.MarkRead(id); err != nil {
			slog.Warn("mark inquiry read failed", "id", id, "error", err)
		}
	}

	data := a.adminData()
	data["inquiry"] = inquiry

	a.renderer.Page(w, r, "inquiry_detail", &render.PageData{
		Title:   "Consulta",
		Section: "inquiries",
		Data:    data,
	})
}

// InquiryDelete removes an inquiry and its stored attachments.
func (a *Admin) InquiryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	inquiry, err := a.inquiryStore.FindByID(id)
	if err == nil && inquiry != nil {
		for _, img := range inquiry.Images {
			a.deleteStored(r, img)
		}
	}

	if err := a.inquiryStore.Delete(id); err != nil {
		slog.Error("inquiry delete failed", "id", id, "error", err)
	}

	http.Redirect(w, r, "/admin/inquiries", http.StatusSeeOther)
}
