package database

import (
	"fmt"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openRawDatabase(testContext *testing.T) *gorm.DB {
	testContext.Helper()
	databasePath := filepath.Join(testContext.TempDir(), "migration.db")
	database, err := gorm.Open(sqlite.Open(dataSourceName(databasePath)), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		testContext.Fatalf("failed to access sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	testContext.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := database.AutoMigrate(&migrationRecord{}); err != nil {
		testContext.Fatalf("failed to migrate bookkeeping table: %v", err)
	}
	return database
}

func countRows(testContext *testing.T, database *gorm.DB, table string) int64 {
	testContext.Helper()
	var count int64
	if err := database.Table(table).Count(&count).Error; err != nil {
		testContext.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}

func TestApplyMigrationsBackfillsSearchShadow(testContext *testing.T) {
	database := openRawDatabase(testContext)

	if err := applyMigrationsUpTo(database, zap.NewNop(), 1); err != nil {
		testContext.Fatalf("failed to apply version 1: %v", err)
	}
	version, err := SchemaVersion(database)
	if err != nil || version != 1 {
		testContext.Fatalf("expected schema version 1, got %d (%v)", version, err)
	}

	const productCount = 7
	for index := 1; index <= productCount; index++ {
		insert := "INSERT INTO products (id, name, description, price) VALUES (?, ?, ?, ?)"
		name := fmt.Sprintf("Product %d", index)
		if err := database.Exec(insert, index, name, name+" is fine", "10").Error; err != nil {
			testContext.Fatalf("failed to insert product: %v", err)
		}
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	if count := countRows(testContext, database, "products"); count != productCount {
		testContext.Fatalf("expected %d products after migration, got %d", productCount, count)
	}
	if count := countRows(testContext, database, "products_fts"); count != productCount {
		testContext.Fatalf("expected %d shadow entries after migration, got %d", productCount, count)
	}

	var record migrationRecord
	if err := database.Where("version = ?", 2).Take(&record).Error; err != nil {
		testContext.Fatalf("expected migration record to be created: %v", err)
	}
	if record.Name != migrationCreateProductsFts {
		testContext.Fatalf("unexpected migration name %q", record.Name)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}
}

func TestApplyMigrationsRunsOnce(testContext *testing.T) {
	database := openRawDatabase(testContext)

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}
	insert := "INSERT INTO products (id, name, description, price) VALUES (1, 'Monocle', 'Monocle is fine', '3')"
	if err := database.Exec(insert).Error; err != nil {
		testContext.Fatalf("failed to insert product: %v", err)
	}
	// Rows written after the migration are maintained by the store, not the migration.
	shadowInsert := "INSERT INTO products_fts (rowid, name, description) VALUES (1, 'Monocle', 'Monocle is fine')"
	if err := database.Exec(shadowInsert).Error; err != nil {
		testContext.Fatalf("failed to insert shadow row: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to re-apply migrations: %v", err)
	}

	if count := countRows(testContext, database, "products_fts"); count != 1 {
		testContext.Fatalf("expected shadow to be untouched by a second run, got %d rows", count)
	}
	if count := countRows(testContext, database, "db_migrations"); count != LatestSchemaVersion {
		testContext.Fatalf("expected %d migration records, got %d", LatestSchemaVersion, count)
	}
}

func TestApplyMigrationsFailsOnMalformedSchema(testContext *testing.T) {
	database := openRawDatabase(testContext)

	if err := database.Exec("CREATE TABLE products (id INTEGER PRIMARY KEY, title TEXT)").Error; err != nil {
		testContext.Fatalf("failed to create malformed table: %v", err)
	}
	if err := database.Create(&migrationRecord{Version: 1, Name: migrationCreateCatalogTables, AppliedAtSeconds: 1}).Error; err != nil {
		testContext.Fatalf("failed to record version 1: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err == nil {
		testContext.Fatalf("expected migration against malformed schema to fail")
	}
	version, err := SchemaVersion(database)
	if err != nil {
		testContext.Fatalf("failed to read schema version: %v", err)
	}
	if version != 1 {
		testContext.Fatalf("expected schema to stay at version 1, got %d", version)
	}
}

func TestOpenSQLiteCreatesLatestSchema(testContext *testing.T) {
	databasePath := filepath.Join(testContext.TempDir(), "nested", "catalog.db")

	existed, err := Exists(databasePath)
	if err != nil {
		testContext.Fatalf("unexpected exists error: %v", err)
	}
	if existed {
		testContext.Fatalf("expected no store file before open")
	}

	database, err := OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		testContext.Fatalf("failed to access sql handle: %v", err)
	}
	defer sqlDB.Close()

	version, err := SchemaVersion(database)
	if err != nil {
		testContext.Fatalf("failed to read schema version: %v", err)
	}
	if version != LatestSchemaVersion {
		testContext.Fatalf("expected schema version %d, got %d", LatestSchemaVersion, version)
	}

	existed, err = Exists(databasePath)
	if err != nil || !existed {
		testContext.Fatalf("expected store file after open, got %v (%v)", existed, err)
	}
}

func TestExistsRejectsDirectory(testContext *testing.T) {
	if _, err := Exists(testContext.TempDir()); err == nil {
		testContext.Fatalf("expected a directory path to be rejected")
	}
}
