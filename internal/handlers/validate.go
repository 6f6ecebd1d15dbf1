package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"ferrecms/internal/models"
)

// Validation limits for form fields.
const (
	maxNameLen      = 200
	maxSKULen       = 100
	maxDescShortLen = 500
	maxDescLongLen  = 10_000
	maxContactLen   = 200
	maxUploadBytes  = 10 << 20 // per-file upload limit
)

// validateProduct checks product form inputs and returns the first error found.
func validateProduct(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "El nombre es obligatorio."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "El nombre es demasiado largo (máximo 200 caracteres)."
	}
	return ""
}

// validateInquiry checks the public inquiry form and returns the first
// error found. The message limit mirrors the form's maxlength so a
// crafted request cannot bypass it.
func validateInquiry(name, email, message string) string {
	if strings.TrimSpace(name) == "" {
		return "El nombre es obligatorio."
	}
	if utf8.RuneCountInString(name) > maxContactLen {
		return "El nombre es demasiado largo."
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "El email no es válido."
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "El mensaje es obligatorio."
	}
	if utf8.RuneCountInString(message) > models.MaxInquiryMessageLen {
		return "El mensaje es demasiado largo (máximo 500 caracteres)."
	}
	return ""
}

// validateCategoryName checks a category or brand name.
func validateCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "El nombre es obligatorio."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "El nombre es demasiado largo (máximo 200 caracteres)."
	}
	return ""
}
