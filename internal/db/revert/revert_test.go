package revert

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, db.AutoMigrate(&models.Setting{}))

	return db
}

func TestSaveAppliesMutation(t *testing.T) {
	db := setupTestDB(t)

	s := models.Setting{Name: "maintenance_mode", Value: []byte("off")}
	require.NoError(t, db.Create(&s).Error)

	err := Save(db, &s, func(s *models.Setting) {
		s.Value = []byte("on")
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("on"), s.Value)

	var got models.Setting
	require.NoError(t, db.First(&got, s.ID).Error)
	assert.Equal(t, []byte("on"), got.Value)
}

func TestSaveRestoresPreImageOnFailure(t *testing.T) {
	db := setupTestDB(t)

	s := models.Setting{Name: "maintenance_mode", Value: []byte("off")}
	require.NoError(t, db.Create(&s).Error)

	other := models.Setting{Name: "support_email", Value: []byte("x")}
	require.NoError(t, db.Create(&other).Error)

	// renaming onto an existing unique name makes the database reject the write
	err := Save(db, &s, func(s *models.Setting) {
		s.Name = "support_email"
		s.Value = []byte("on")
	})
	require.Error(t, err)

	// the in-memory record is back to its pre-image
	assert.Equal(t, "maintenance_mode", s.Name)
	assert.Equal(t, []byte("off"), s.Value)

	// and the database row is untouched
	var got models.Setting
	require.NoError(t, db.First(&got, s.ID).Error)
	assert.Equal(t, "maintenance_mode", got.Name)
}

func TestUpdatesRestoresPreImageOnFailure(t *testing.T) {
	db := setupTestDB(t)

	s := models.Setting{Name: "maintenance_mode", Value: []byte("off")}
	require.NoError(t, db.Create(&s).Error)

	other := models.Setting{Name: "support_email", Value: []byte("x")}
	require.NoError(t, db.Create(&other).Error)

	err := Updates(db, &s, map[string]interface{}{"name": "support_email"}, func(s *models.Setting) {
		s.Name = "support_email"
	})
	require.Error(t, err)
	assert.Equal(t, "maintenance_mode", s.Name)
}

func TestUpdatesWritesOnlyGivenColumns(t *testing.T) {
	db := setupTestDB(t)

	s := models.Setting{Name: "maintenance_mode", Value: []byte("off")}
	require.NoError(t, db.Create(&s).Error)

	err := Updates(db, &s, map[string]interface{}{"value": []byte("on")}, func(s *models.Setting) {
		s.Value = []byte("on")
	})
	require.NoError(t, err)

	var got models.Setting
	require.NoError(t, db.First(&got, s.ID).Error)
	assert.Equal(t, []byte("on"), got.Value)
	assert.Equal(t, "maintenance_mode", got.Name)
}
