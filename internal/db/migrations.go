package db

import (
	"cmp"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/migrations"
)

// 0001_init.sql -> version "0001".
var migrationFileName = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)

type schemaMigration struct {
	Version string
	Name    string
	order   int
	body    string
}

type schemaMigrationRow struct {
	Version   string    `gorm:"column:version;primaryKey"`
	Name      string    `gorm:"column:name"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

func (schemaMigrationRow) TableName() string { return "schema_migrations" }

// applyEmbeddedMigrations brings a sqlite database up to the newest schema and
// returns the file names it ran. Each file runs in its own transaction.
func applyEmbeddedMigrations(database *gorm.DB) ([]string, error) {
	if err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL
)`).Error; err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	pending, err := pendingMigrations(database)
	if err != nil {
		return nil, err
	}

	ran := make([]string, 0, len(pending))
	for _, migration := range pending {
		if err := database.Transaction(func(tx *gorm.DB) error {
			return runMigration(tx, migration)
		}); err != nil {
			return ran, err
		}
		ran = append(ran, migration.Name)
	}
	return ran, nil
}

func pendingMigrations(database *gorm.DB) ([]schemaMigration, error) {
	all, err := loadSchemaMigrations()
	if err != nil {
		return nil, err
	}

	var rows []schemaMigrationRow
	if err := database.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[string]bool, len(rows))
	for _, row := range rows {
		done[row.Version] = true
	}

	return slices.DeleteFunc(all, func(migration schemaMigration) bool {
		return done[migration.Version]
	}), nil
}

func loadSchemaMigrations() ([]schemaMigration, error) {
	entries, err := fs.ReadDir(migrations.SQLite, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	byVersion := make(map[string]string, len(entries))
	loaded := make([]schemaMigration, 0, len(entries))
	for _, entry := range entries {
		match := migrationFileName.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}
		version := match[1]
		if previous, ok := byVersion[version]; ok {
			return nil, fmt.Errorf("migration version %s used by %s and %s", version, previous, entry.Name())
		}
		byVersion[version] = entry.Name()

		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", entry.Name(), err)
		}
		body, err := fs.ReadFile(migrations.SQLite, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		loaded = append(loaded, schemaMigration{Version: version, Name: entry.Name(), order: order, body: string(body)})
	}

	slices.SortFunc(loaded, func(a, b schemaMigration) int {
		return cmp.Compare(a.order, b.order)
	})
	return loaded, nil
}

func runMigration(tx *gorm.DB, migration schemaMigration) error {
	statements := splitSQLStatements(migration.body)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s is empty", migration.Name)
	}
	for _, statement := range statements {
		if err := tx.Exec(statement).Error; err != nil {
			return fmt.Errorf("migration %s: %w", migration.Name, err)
		}
	}
	return tx.Create(&schemaMigrationRow{
		Version:   migration.Version,
		Name:      migration.Name,
		AppliedAt: time.Now().UTC(),
	}).Error
}

// splitSQLStatements drops "--" line comments and splits on semicolons. The
// schema files contain no string literals with semicolons.
func splitSQLStatements(sqlText string) []string {
	var cleaned strings.Builder
	for _, line := range strings.Split(sqlText, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		cleaned.WriteString(line)
		cleaned.WriteByte('\n')
	}

	var statements []string
	for _, part := range strings.Split(cleaned.String(), ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
