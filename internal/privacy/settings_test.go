package privacy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/gmsas95/vitalbase/internal/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: ":memory:"}, &gorm.Config{})
	require.NoError(t, err)
	return db
}

func setupSettingsStore(t *testing.T) *SettingsStore {
	store, err := NewSettingsStore(setupTestDB(t), zap.NewNop())
	require.NoError(t, err)
	return store
}

func levelPtr(l Level) *Level { return &l }
func boolPtr(b bool) *bool    { return &b }

func TestSettings_DefaultSynthesized(t *testing.T) {
	store := setupSettingsStore(t)

	settings, err := store.Get("user_123")
	require.NoError(t, err)

	for _, c := range Categories {
		assert.Equal(t, LevelPrivate, settings.CategoryLevel(c), "category %s", c)
	}
	assert.False(t, settings.HeightVisible)
	assert.False(t, settings.WeightVisible)
	assert.False(t, settings.BirthDateVisible)
	assert.False(t, settings.AllowDataSharing)
	assert.False(t, settings.ShareWithFriends)
}

func TestSettings_DefaultNotPersisted(t *testing.T) {
	store := setupSettingsStore(t)

	_, err := store.Get("user_123")
	require.NoError(t, err)

	var count int64
	require.NoError(t, store.db.Model(&Settings{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSettings_UpdateMergePatch(t *testing.T) {
	store := setupSettingsStore(t)

	_, err := store.Update("user_123", &SettingsPatch{
		BasicInfoLevel: levelPtr(LevelPublic),
		HeightVisible:  boolPtr(true),
	})
	require.NoError(t, err)

	// Patch one other field; earlier values must survive.
	updated, err := store.Update("user_123", &SettingsPatch{
		HealthDataLevel: levelPtr(LevelFriendsOnly),
	})
	require.NoError(t, err)

	assert.Equal(t, LevelPublic, updated.BasicInfoLevel)
	assert.Equal(t, LevelFriendsOnly, updated.HealthDataLevel)
	assert.Equal(t, LevelPrivate, updated.MedicalInfoLevel)
	assert.True(t, updated.HeightVisible)
	assert.False(t, updated.WeightVisible)
}

func TestSettings_UpdateRejectsUnknownLevel(t *testing.T) {
	store := setupSettingsStore(t)

	_, err := store.Update("user_123", &SettingsPatch{
		BasicInfoLevel: levelPtr("family_only"),
	})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestSettings_Reset(t *testing.T) {
	store := setupSettingsStore(t)

	_, err := store.Update("user_123", &SettingsPatch{
		BasicInfoLevel:   levelPtr(LevelPublic),
		WeightVisible:    boolPtr(true),
		AllowDataSharing: boolPtr(true),
	})
	require.NoError(t, err)

	settings, err := store.Reset("user_123")
	require.NoError(t, err)

	assert.Equal(t, LevelPrivate, settings.BasicInfoLevel)
	assert.False(t, settings.WeightVisible)
	assert.False(t, settings.AllowDataSharing)
}

func TestSettings_ConcurrentUpdatesDoNotInterleave(t *testing.T) {
	store := setupSettingsStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.Update("user_123", &SettingsPatch{BasicInfoLevel: levelPtr(LevelPublic)})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := store.Update("user_123", &SettingsPatch{HealthDataLevel: levelPtr(LevelFriendsOnly)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	settings, err := store.Get("user_123")
	require.NoError(t, err)
	assert.Equal(t, LevelPublic, settings.BasicInfoLevel)
	assert.Equal(t, LevelFriendsOnly, settings.HealthDataLevel)
}

func TestSummarize(t *testing.T) {
	store := setupSettingsStore(t)

	settings, err := store.Update("user_123", &SettingsPatch{
		BasicInfoLevel: levelPtr(LevelPublic),
		GenderVisible:  boolPtr(true),
	})
	require.NoError(t, err)

	summary := Summarize(settings)
	assert.Equal(t, LevelPublic, summary.CategoryLevels[CategoryBasicInfo])
	assert.Equal(t, LevelPrivate, summary.CategoryLevels[CategoryVitalSigns])
	assert.True(t, summary.VisibleFields[FieldGender])
	assert.False(t, summary.VisibleFields[FieldWeight])
	assert.NotEmpty(t, summary.UpdatedAt)
}
