package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"ferrecms/internal/slug"
)

// Seed populates the database with initial development data: the root
// categories and a minimal site-info record. It never creates users —
// administrative credentials are provisioned with the adduser command,
// not baked into application startup.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count == 0 {
		for _, name := range []string{"Pinturería", "Electricidad", "Ferretería", "Herramientas"} {
			_, err := db.Exec(`
				INSERT INTO categories (name, slug) VALUES ($1, $2)
			`, name, slug.Generate(name))
			if err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}
		slog.Info("database seeded with root categories")
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM site_info").Scan(&count); err != nil {
		return fmt.Errorf("seed check site info: %w", err)
	}

	if count == 0 {
		_, err := db.Exec(`
			INSERT INTO site_info (store_name, address, hours)
			VALUES ($1, $2, $3)
		`, "Ferretería", "", "")
		if err != nil {
			return fmt.Errorf("seed site info: %w", err)
		}
		slog.Info("database seeded with site info record")
	}

	return nil
}
