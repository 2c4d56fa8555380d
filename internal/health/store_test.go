package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/gmsas95/vitalbase/internal/errors"
)

func setupTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: ":memory:"}, &gorm.Config{})
	require.NoError(t, err)

	store, err := NewStore(db, zap.NewNop())
	require.NoError(t, err)

	return store
}

func TestStore_SaveProfile(t *testing.T) {
	store := setupTestStore(t)

	profile, err := store.SaveProfile(testProfile())
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)

	retrieved, err := store.GetProfile("user_123")
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, 180.0, retrieved.HeightCm)
}

func TestStore_SaveProfileUpserts(t *testing.T) {
	store := setupTestStore(t)

	first, err := store.SaveProfile(testProfile())
	require.NoError(t, err)

	updated := testProfile()
	updated.TargetWeightKg = 72
	second, err := store.SaveProfile(updated)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	retrieved, err := store.GetProfile("user_123")
	require.NoError(t, err)
	assert.Equal(t, 72.0, retrieved.TargetWeightKg)
}

func TestStore_SaveProfileValidates(t *testing.T) {
	store := setupTestStore(t)

	bad := testProfile()
	bad.HeightCm = 300
	_, err := store.SaveProfile(bad)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	bad = testProfile()
	bad.TargetWeightKg = 0
	_, err = store.SaveProfile(bad)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	future := time.Now().Add(24 * time.Hour)
	bad = testProfile()
	bad.BirthDate = &future
	_, err = store.SaveProfile(bad)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestStore_GetProfileAbsent(t *testing.T) {
	store := setupTestStore(t)

	profile, err := store.GetProfile("nobody")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestStore_LatestMeasurement(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, w := range []float64{90, 89, 88} {
		m := &BodyMeasurement{
			UserID:          "user_123",
			WeightKg:        w,
			MeasurementDate: base.AddDate(0, 0, i),
		}
		require.NoError(t, store.CreateMeasurement(m))
	}

	latest, err := store.LatestMeasurement("user_123")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 88.0, latest.WeightKg)
}

func TestStore_LatestMeasurementTieBreak(t *testing.T) {
	store := setupTestStore(t)
	date := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	first := &BodyMeasurement{UserID: "user_123", WeightKg: 90, MeasurementDate: date}
	require.NoError(t, store.CreateMeasurement(first))

	// Same date, inserted later, with explicit later created_at.
	second := &BodyMeasurement{UserID: "user_123", WeightKg: 89, MeasurementDate: date, CreatedAt: time.Now().Add(time.Second)}
	require.NoError(t, store.CreateMeasurement(second))

	latest, err := store.LatestMeasurement("user_123")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestStore_LatestMeasurementAbsent(t *testing.T) {
	store := setupTestStore(t)

	latest, err := store.LatestMeasurement("nobody")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestStore_ListMeasurementsDescending(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		m := &BodyMeasurement{
			UserID:          "user_123",
			WeightKg:        90 - float64(i),
			MeasurementDate: base.AddDate(0, 0, i),
		}
		require.NoError(t, store.CreateMeasurement(m))
	}

	ms, err := store.ListMeasurements("user_123", 10, 0)
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.True(t, ms[0].MeasurementDate.After(ms[1].MeasurementDate))
	assert.True(t, ms[1].MeasurementDate.After(ms[2].MeasurementDate))
}

func TestStore_CreateMeasurementValidates(t *testing.T) {
	store := setupTestStore(t)

	err := store.CreateMeasurement(&BodyMeasurement{UserID: "user_123", WeightKg: 0})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestStore_DeleteMeasurement(t *testing.T) {
	store := setupTestStore(t)

	m := &BodyMeasurement{UserID: "user_123", WeightKg: 80}
	require.NoError(t, store.CreateMeasurement(m))

	require.NoError(t, store.DeleteMeasurement("user_123", m.ID))

	err := store.DeleteMeasurement("user_123", m.ID)
	assert.True(t, errors.HasCode(err, errors.CodeMeasurementNotFound))
}

func TestStore_DeleteMeasurementWrongOwner(t *testing.T) {
	store := setupTestStore(t)

	m := &BodyMeasurement{UserID: "user_123", WeightKg: 80}
	require.NoError(t, store.CreateMeasurement(m))

	err := store.DeleteMeasurement("user_456", m.ID)
	assert.True(t, errors.HasCode(err, errors.CodeMeasurementNotFound))
}

func TestStore_Vitals(t *testing.T) {
	store := setupTestStore(t)
	hr := 72

	v := &VitalSign{UserID: "user_123", HeartRate: &hr}
	require.NoError(t, store.CreateVital(v))
	assert.NotEmpty(t, v.ID)

	retrieved, err := store.GetVital("user_123", v.ID)
	require.NoError(t, err)
	assert.Equal(t, 72, *retrieved.HeartRate)

	_, err = store.GetVital("user_456", v.ID)
	assert.True(t, errors.HasCode(err, errors.CodeVitalNotFound))
}

func TestStore_VitalValidates(t *testing.T) {
	store := setupTestStore(t)

	err := store.CreateVital(&VitalSign{UserID: "user_123"})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	temp := 60.0
	err = store.CreateVital(&VitalSign{UserID: "user_123", TemperatureCelsius: &temp})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestStore_Stats(t *testing.T) {
	store := setupTestStore(t)
	bodyFat := 24.0
	hr := 68

	require.NoError(t, store.CreateMeasurement(&BodyMeasurement{
		UserID:            "user_123",
		WeightKg:          82,
		BodyFatPercentage: &bodyFat,
	}))
	require.NoError(t, store.CreateVital(&VitalSign{UserID: "user_123", HeartRate: &hr}))

	stats, err := store.Stats("user_123")
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.MeasurementCount)
	assert.Equal(t, int64(1), stats.VitalCount)
	assert.Equal(t, 82.0, *stats.LatestWeightKg)
	assert.Equal(t, 24.0, *stats.LatestBodyFat)
	assert.Equal(t, 68, *stats.LatestHeartRate)
	assert.NotNil(t, stats.LastMeasurementDate)
}
