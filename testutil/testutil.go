package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/kendall-kelly/route-orders-api/config"
	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q.", env)
	}
}

// NewTestDB opens a private in-memory SQLite database, migrates every model
// and installs it as the global database. Each call gets its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	config.SetDB(db)
	return db
}

// CreateUser inserts a user with the given subject and role
func CreateUser(t *testing.T, db *gorm.DB, subject, role string) *models.User {
	t.Helper()

	user := &models.User{
		Subject: subject,
		Name:    subject,
		Email:   subject + "@example.com",
		Role:    role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCustomer inserts a customer user
func CreateCustomer(t *testing.T, db *gorm.DB, subject string) *models.User {
	t.Helper()
	return CreateUser(t, db, subject, models.RoleCustomer)
}

// CreateProduct inserts an active catalog product
func CreateProduct(t *testing.T, db *gorm.DB, name, category, price string) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Active:   true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
