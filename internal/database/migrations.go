package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// LatestSchemaVersion is the schema version produced by applyMigrations.
	LatestSchemaVersion = 2

	migrationCreateCatalogTables = "create_catalog_tables"
	migrationCreateProductsFts   = "create_products_fts"
)

type migrationRecord struct {
	Version          int    `gorm:"column:version;primaryKey;autoIncrement:false"`
	Name             string `gorm:"column:name;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	version    int
	name       string
	statements []string
}

// catalogMigrations is append-only; a released entry is never edited.
var catalogMigrations = []migrationDefinition{
	{
		version: 1,
		name:    migrationCreateCatalogTables,
		statements: []string{
			"CREATE TABLE IF NOT EXISTS `products` (" +
				"`id` INTEGER PRIMARY KEY NOT NULL, " +
				"`name` TEXT NOT NULL, " +
				"`description` TEXT NOT NULL, " +
				"`price` TEXT NOT NULL)",
			"CREATE TABLE IF NOT EXISTS `comments` (" +
				"`id` INTEGER PRIMARY KEY NOT NULL, " +
				"`product_id` INTEGER NOT NULL REFERENCES `products`(`id`), " +
				"`text` TEXT NOT NULL, " +
				"`posted_at_ms` INTEGER NOT NULL)",
			"CREATE INDEX IF NOT EXISTS `idx_comments_product` ON `comments` (`product_id`)",
		},
	},
	{
		version: 2,
		name:    migrationCreateProductsFts,
		statements: []string{
			"CREATE VIRTUAL TABLE IF NOT EXISTS `products_fts` USING fts5(" +
				"`name`, `description`, tokenize = 'trigram')",
			"DELETE FROM `products_fts`",
			"INSERT INTO `products_fts` (`rowid`, `name`, `description`) " +
				"SELECT `id`, `name`, `description` FROM `products`",
		},
	},
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	return applyMigrationsUpTo(db, logger, LatestSchemaVersion)
}

// applyMigrationsUpTo runs every pending migration with version <= target. Each
// migration and its bookkeeping row commit in one transaction, so a migration
// runs at most once and a failure leaves the previous version intact.
func applyMigrationsUpTo(db *gorm.DB, logger *zap.Logger, target int) error {
	for _, migration := range catalogMigrations {
		if migration.version > target {
			break
		}
		var record migrationRecord
		err := db.Where("version = ?", migration.version).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			for _, statement := range migration.statements {
				if err := tx.Exec(statement).Error; err != nil {
					return err
				}
			}
			appliedAt := time.Now().UTC().Unix()
			return tx.Create(&migrationRecord{
				Version:          migration.version,
				Name:             migration.name,
				AppliedAtSeconds: appliedAt,
			}).Error
		})
		if err != nil {
			if logger != nil {
				logger.Error("database migration failed",
					zap.Int("version", migration.version),
					zap.String("migration", migration.name),
					zap.Error(err))
			}
			return err
		}
		if logger != nil {
			logger.Info("database migration applied",
				zap.Int("version", migration.version),
				zap.String("migration", migration.name))
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, or 0 for an empty store.
func SchemaVersion(db *gorm.DB) (int, error) {
	var version int
	if err := db.Model(&migrationRecord{}).Select("COALESCE(MAX(version), 0)").Scan(&version).Error; err != nil {
		return 0, err
	}
	return version, nil
}
