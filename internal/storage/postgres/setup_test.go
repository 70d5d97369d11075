package postgres

import (
	"testing"

	"github.com/matbakh-app/google-job-worker/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Disable logs during tests
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Job{},
		&models.OAuthToken{},
		&models.BusinessPartner{},
		&models.BusinessProfile{},
		&models.VisibilityLead{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	return db
}
