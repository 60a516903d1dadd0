// cmd/tools/catalog-loader/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"marketplace-notify/internal/common/config"
	"marketplace-notify/pkg/registry"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	loadCmd := flag.NewFlagSet("load", flag.ExitOnError)

	// Validate command flags
	validatePath := validateCmd.String("path", "configs/catalog-seed.json", "Path to catalog seed file")

	// Load command flags
	loadPath := loadCmd.String("path", "configs/catalog-seed.json", "Path to catalog seed file")
	dsn := loadCmd.String("dsn", "", "PostgreSQL DSN (defaults to the application config)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		seed, err := registry.Load(*validatePath)
		if err != nil {
			fmt.Printf("Seed validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Seed validation passed. Found %d events.\n", len(seed.Events))

	case "load":
		loadCmd.Parse(os.Args[2:])
		seed, err := registry.Load(*loadPath)
		if err != nil {
			fmt.Printf("Seed validation failed: %v\n", err)
			os.Exit(1)
		}
		if err := loadSeed(seed, *dsn); err != nil {
			fmt.Printf("Error loading seed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d events into the catalog.\n", len(seed.Events))

	case "help":
		fallthrough
	default:
		help()
	}
}

// loadSeed upserts every event and template in the seed. Events are matched
// on key and templates on (event_id, recipient_type), so reloading the same
// file is idempotent.
func loadSeed(seed *registry.CatalogSeed, dsn string) error {
	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config for DSN: %w", err)
		}
		dsn = cfg.Database.Postgres.GetDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, event := range seed.Events {
		var eventID string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO notification_events (id, key, name, is_active)
			VALUES (gen_random_uuid(), $1, $2, $3)
			ON CONFLICT (key) DO UPDATE
			SET name = EXCLUDED.name, is_active = EXCLUDED.is_active
			RETURNING id`,
			event.Key, event.Name, event.IsActive,
		).Scan(&eventID)
		if err != nil {
			return fmt.Errorf("upsert event %s: %w", event.Key, err)
		}

		for _, tmpl := range event.Templates {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO notification_templates (
					id, event_id, recipient_type, is_active,
					email_enabled, email_subject, email_body, email_action_url,
					toast_enabled, toast_title, toast_message, toast_action_url,
					push_enabled, push_title, push_body, push_action_url, push_icon,
					inapp_enabled, inapp_title, inapp_message, inapp_action_url
				)
				VALUES (
					gen_random_uuid(), $1, $2, $3,
					$4, $5, $6, $7,
					$8, $9, $10, $11,
					$12, $13, $14, $15, $16,
					$17, $18, $19, $20
				)
				ON CONFLICT (event_id, recipient_type) DO UPDATE
				SET is_active = EXCLUDED.is_active,
				    email_enabled = EXCLUDED.email_enabled,
				    email_subject = EXCLUDED.email_subject,
				    email_body = EXCLUDED.email_body,
				    email_action_url = EXCLUDED.email_action_url,
				    toast_enabled = EXCLUDED.toast_enabled,
				    toast_title = EXCLUDED.toast_title,
				    toast_message = EXCLUDED.toast_message,
				    toast_action_url = EXCLUDED.toast_action_url,
				    push_enabled = EXCLUDED.push_enabled,
				    push_title = EXCLUDED.push_title,
				    push_body = EXCLUDED.push_body,
				    push_action_url = EXCLUDED.push_action_url,
				    push_icon = EXCLUDED.push_icon,
				    inapp_enabled = EXCLUDED.inapp_enabled,
				    inapp_title = EXCLUDED.inapp_title,
				    inapp_message = EXCLUDED.inapp_message,
				    inapp_action_url = EXCLUDED.inapp_action_url`,
				eventID, tmpl.RecipientType, tmpl.IsActive,
				tmpl.Email.Enabled, tmpl.Email.Subject, tmpl.Email.Body, tmpl.Email.ActionURL,
				tmpl.Toast.Enabled, tmpl.Toast.Title, tmpl.Toast.Message, tmpl.Toast.ActionURL,
				tmpl.Push.Enabled, tmpl.Push.Title, tmpl.Push.Body, tmpl.Push.ActionURL, tmpl.Push.Icon,
				tmpl.InApp.Enabled, tmpl.InApp.Title, tmpl.InApp.Message, tmpl.InApp.ActionURL,
			)
			if err != nil {
				return fmt.Errorf("upsert template %s/%s: %w", event.Key, tmpl.RecipientType, err)
			}
		}
	}

	return tx.Commit()
}

func help() {
	fmt.Print(`
Usage: catalog-loader <command> [flags]

Commands:
  validate Validate a catalog seed file
  load     Validate a seed file and upsert it into the catalog database
  help     Show this help message

Examples:
  catalog-loader validate -path configs/catalog-seed.json
  catalog-loader load -path configs/catalog-seed.json
  catalog-loader load -path configs/catalog-seed.json -dsn "host=localhost port=5432 user=notify password=secret dbname=marketplace sslmode=disable"

Use 'catalog-loader <command> -h' for more information about a command.
`)
}
