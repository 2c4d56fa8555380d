package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmsas95/vitalbase/internal/errors"
)

func testProfile() *HealthProfile {
	birth := time.Date(1990, 3, 10, 0, 0, 0, 0, time.UTC)
	return &HealthProfile{
		UserID:         "user_123",
		BirthDate:      &birth,
		Gender:         GenderMale,
		HeightCm:       180,
		TargetWeightKg: 75,
		ActivityLevel:  ActivityModerate,
	}
}

func TestBuild_NilProfile(t *testing.T) {
	builder := NewBuilder()

	_, err := builder.Build(nil, nil, time.Now())
	assert.True(t, errors.HasCode(err, errors.CodeProfileNotFound))
}

func TestBuild_FullSnapshot(t *testing.T) {
	builder := NewBuilder()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bodyFat := 22.0

	snap, err := builder.Build(testProfile(), &BodyMeasurement{
		UserID:            "user_123",
		WeightKg:          85,
		BodyFatPercentage: &bodyFat,
		MeasurementDate:   now,
	}, now)
	require.NoError(t, err)

	require.NotNil(t, snap.Calculations.CurrentBMI)
	assert.InDelta(t, 26.23, *snap.Calculations.CurrentBMI, 0.01)
	require.NotNil(t, snap.Calculations.BMICategory)
	assert.Equal(t, BMIObesityClass1, *snap.Calculations.BMICategory)

	require.NotNil(t, snap.Calculations.TargetBMI)
	assert.InDelta(t, 23.15, *snap.Calculations.TargetBMI, 0.01)

	require.NotNil(t, snap.Calculations.AgeYears)
	assert.Equal(t, 35, *snap.Calculations.AgeYears)

	require.NotNil(t, snap.Calculations.BMR)
	require.NotNil(t, snap.Calculations.DailyCalories)
	require.NotNil(t, snap.Calculations.WeightPlan)
	assert.Equal(t, PlanLoss, snap.Calculations.WeightPlan.Direction)

	require.NotNil(t, snap.Calculations.BodyFatMassKg)
	assert.InDelta(t, 18.7, *snap.Calculations.BodyFatMassKg, 0.01)
	require.NotNil(t, snap.Calculations.LeanBodyMassKg)

	require.NotNil(t, snap.Trend)
	assert.InDelta(t, 10, snap.Trend.DifferenceKg, 0.001)
}

func TestBuild_NoMeasurementDegrades(t *testing.T) {
	builder := NewBuilder()

	snap, err := builder.Build(testProfile(), nil, time.Now())
	require.NoError(t, err)

	// Profile-only metrics survive.
	assert.NotNil(t, snap.Calculations.TargetBMI)
	assert.NotNil(t, snap.Calculations.IdealWeightKg)
	assert.NotNil(t, snap.Calculations.AgeYears)

	// Weight-dependent metrics are omitted, not zeroed.
	assert.Nil(t, snap.Calculations.CurrentBMI)
	assert.Nil(t, snap.Calculations.BMICategory)
	assert.Nil(t, snap.Calculations.BMR)
	assert.Nil(t, snap.Calculations.DailyCalories)
	assert.Nil(t, snap.Calculations.WeightPlan)
	assert.Nil(t, snap.Trend)
}

func TestBuild_NoBirthDateOmitsBMR(t *testing.T) {
	builder := NewBuilder()
	profile := testProfile()
	profile.BirthDate = nil

	snap, err := builder.Build(profile, &BodyMeasurement{UserID: "user_123", WeightKg: 85}, time.Now())
	require.NoError(t, err)

	assert.NotNil(t, snap.Calculations.CurrentBMI)
	assert.Nil(t, snap.Calculations.AgeYears)
	assert.Nil(t, snap.Calculations.BMR)
	assert.Nil(t, snap.Calculations.DailyCalories)
	assert.Nil(t, snap.Calculations.WeightPlan)
}

func TestBuild_UnknownActivityOmitsCalories(t *testing.T) {
	builder := NewBuilder()
	profile := testProfile()
	profile.ActivityLevel = "extreme"

	snap, err := builder.Build(profile, &BodyMeasurement{UserID: "user_123", WeightKg: 85}, time.Now())
	require.NoError(t, err)

	assert.NotNil(t, snap.Calculations.BMR)
	assert.Nil(t, snap.Calculations.DailyCalories)
	assert.Nil(t, snap.Calculations.WeightPlan)
}

func TestBuildTrend_AtTarget(t *testing.T) {
	trend := buildTrend(75, 75)

	assert.Zero(t, trend.DifferenceKg)
	assert.InDelta(t, 100, trend.ProgressPercent, 0.001)
}
