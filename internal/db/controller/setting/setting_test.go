package setting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()

	for _, setting := range settings {
		err := db.Create(&setting).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful get",
			dbParam:     db,
			settingName: "maintenance_mode",
			seedData: []models.Setting{
				{Name: "maintenance_mode", Value: []byte(`{"enabled":false}`)},
			},
			expectedValue: []byte(`{"enabled":false}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Get(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, setting)
				assert.Equal(t, tc.settingName, setting.Name)
				assert.Equal(t, tc.expectedValue, setting.Value)
			}
		})
	}
}

func TestGetAll(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		seedData      []models.Setting
		expectedError error
		expectedCount int
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			expectedError: ErrDBNil,
		},
		{
			name:          "empty database",
			dbParam:       db,
			expectedCount: 0,
		},
		{
			name:    "multiple settings",
			dbParam: db,
			seedData: []models.Setting{
				{Name: "maintenance_mode", Value: []byte(`{"enabled":false}`)},
				{Name: "support_email", Value: []byte(`"support@example.com"`)},
				{Name: "max_withdrawal_cents", Value: []byte("500000")},
			},
			expectedCount: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			settings, err := GetAll(tc.dbParam)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, settings)
			} else {
				require.NoError(t, err)
				assert.Len(t, settings, tc.expectedCount)
			}
		})
	}
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		settingValue  []byte
		seedData      []models.Setting
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			settingValue:  []byte("1"),
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			settingValue:  []byte("1"),
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:         "create new setting",
			dbParam:      db,
			settingName:  "maintenance_mode",
			settingValue: []byte(`{"enabled":true}`),
		},
		{
			name:         "update existing setting",
			dbParam:      db,
			settingName:  "maintenance_mode",
			settingValue: []byte(`{"enabled":true}`),
			seedData: []models.Setting{
				{Name: "maintenance_mode", Value: []byte(`{"enabled":false}`)},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Set(tc.dbParam, tc.settingName, tc.settingValue)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.settingName, setting.Name)
				assert.Equal(t, tc.settingValue, setting.Value)

				var dbSetting models.Setting
				err = tc.dbParam.Where("name = ?", tc.settingName).First(&dbSetting).Error
				require.NoError(t, err)
				assert.Equal(t, tc.settingValue, dbSetting.Value)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful delete",
			dbParam:     db,
			settingName: "maintenance_mode",
			seedData: []models.Setting{
				{Name: "maintenance_mode", Value: []byte(`{"enabled":false}`)},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			err := Delete(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)

				var count int64
				tc.dbParam.Model(&models.Setting{}).Where("name = ?", tc.settingName).Count(&count)
				assert.Zero(t, count)
			}
		})
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	created, err := Set(db, "support_email", []byte(`"support@example.com"`))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := Set(db, "support_email", []byte(`"vip@example.com"`))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, []byte(`"vip@example.com"`), updated.Value)

	all, err := GetAll(db)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, Delete(db, "support_email"))

	_, err = Get(db, "support_email")
	require.ErrorIs(t, err, ErrSettingNotFound)
}
