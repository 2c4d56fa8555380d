package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmsas95/vitalbase/internal/errors"
)

func TestBMI(t *testing.T) {
	bmi, err := BMI(70, 175)
	require.NoError(t, err)
	assert.InDelta(t, 22.86, bmi, 0.01)
}

func TestBMI_InvalidInputs(t *testing.T) {
	_, err := BMI(70, 0)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = BMI(70, -10)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = BMI(0, 175)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestCategoryForBMI(t *testing.T) {
	tests := []struct {
		name string
		bmi  float64
		want BMICategory
	}{
		{"underweight", 17.0, BMIUnderweight},
		{"lower normal boundary", 18.5, BMINormal},
		{"just under normal", 18.49, BMIUnderweight},
		{"normal", 22.0, BMINormal},
		{"class 1 boundary", 25.0, BMIObesityClass1},
		{"just under class 1", 24.99, BMINormal},
		{"class 2 boundary", 30.0, BMIObesityClass2},
		{"class 3 boundary", 35.0, BMIObesityClass3},
		{"far above class 3", 50.0, BMIObesityClass3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryForBMI(tt.bmi))
		})
	}
}

func TestCategoryMonotonicInWeight(t *testing.T) {
	order := map[BMICategory]int{
		BMIUnderweight:   0,
		BMINormal:        1,
		BMIObesityClass1: 2,
		BMIObesityClass2: 3,
		BMIObesityClass3: 4,
	}

	prev := -1
	for weight := 40.0; weight <= 160.0; weight += 2.5 {
		bmi, err := BMI(weight, 175)
		require.NoError(t, err)

		rank := order[CategoryForBMI(bmi)]
		assert.GreaterOrEqual(t, rank, prev, "category regressed at weight %.1f", weight)
		prev = rank
	}
}

func TestBMR(t *testing.T) {
	male, err := BMR(80, 180, 30, GenderMale)
	require.NoError(t, err)
	assert.InDelta(t, 88.362+13.397*80+4.799*180-5.677*30, male, 0.001)

	female, err := BMR(80, 180, 30, GenderFemale)
	require.NoError(t, err)
	assert.InDelta(t, 447.593+9.247*80+3.098*180-4.330*30, female, 0.001)

	other, err := BMR(80, 180, 30, GenderOther)
	require.NoError(t, err)
	assert.InDelta(t, (male+female)/2, other, 0.001)

	unspec, err := BMR(80, 180, 30, GenderUnspecified)
	require.NoError(t, err)
	assert.Equal(t, other, unspec)
}

func TestBMR_InvalidInputs(t *testing.T) {
	_, err := BMR(0, 180, 30, GenderMale)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = BMR(80, 0, 30, GenderMale)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = BMR(80, 180, 0, GenderMale)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestDailyCalories(t *testing.T) {
	tests := []struct {
		level ActivityLevel
		mult  float64
	}{
		{ActivitySedentary, 1.2},
		{ActivityLight, 1.375},
		{ActivityModerate, 1.55},
		{ActivityHigh, 1.725},
		{ActivityVeryHigh, 1.9},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			cals, err := DailyCalories(1500, tt.level)
			require.NoError(t, err)
			assert.InDelta(t, 1500*tt.mult, cals, 0.001)
		})
	}
}

func TestDailyCalories_UnknownLevel(t *testing.T) {
	_, err := DailyCalories(1500, "extreme")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestWeightChangePlan_Loss(t *testing.T) {
	plan := WeightChangePlan(90, 84, 2500)

	assert.Equal(t, PlanLoss, plan.Direction)
	assert.InDelta(t, 0.5, plan.WeeklyChangeKg, 0.001)
	assert.InDelta(t, 2000, plan.TargetDailyCalories, 0.001)
	assert.Equal(t, 12, plan.EstimatedWeeks)
	assert.NotEmpty(t, plan.Recommendations)
}

func TestWeightChangePlan_LossCapped(t *testing.T) {
	for _, current := range []float64{100, 150, 250} {
		plan := WeightChangePlan(current, 60, 2500)
		assert.LessOrEqual(t, plan.WeeklyChangeKg, 1.0, "weekly loss exceeded cap at %.0f kg", current)
	}
}

func TestWeightChangePlan_Gain(t *testing.T) {
	plan := WeightChangePlan(55, 65, 2200)

	assert.Equal(t, PlanGain, plan.Direction)
	assert.LessOrEqual(t, plan.WeeklyChangeKg, 0.5)
	assert.InDelta(t, 2700, plan.TargetDailyCalories, 0.001)
	assert.NotEmpty(t, plan.Recommendations)
}

func TestWeightChangePlan_Maintain(t *testing.T) {
	plan := WeightChangePlan(100, 100, 2400)

	assert.Equal(t, PlanMaintain, plan.Direction)
	assert.Zero(t, plan.WeeklyChangeKg)
	assert.Zero(t, plan.EstimatedWeeks)
	assert.InDelta(t, 2400, plan.TargetDailyCalories, 0.001)
	assert.NotEmpty(t, plan.Recommendations)
}

func TestWeightChangePlan_CalorieFloor(t *testing.T) {
	plan := WeightChangePlan(90, 80, 1400)
	assert.InDelta(t, 1200, plan.TargetDailyCalories, 0.001)
}

func TestIdealWeight(t *testing.T) {
	w, err := IdealWeight(175)
	require.NoError(t, err)
	assert.InDelta(t, 22.0*1.75*1.75, w, 0.001)

	_, err = IdealWeight(0)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestBodyComposition(t *testing.T) {
	fat, err := BodyFatMass(80, 25)
	require.NoError(t, err)
	assert.InDelta(t, 20, fat, 0.001)

	lean, err := LeanBodyMass(80, 25)
	require.NoError(t, err)
	assert.InDelta(t, 60, lean, 0.001)

	_, err = BodyFatMass(80, 120)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestAge(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"day before birthday", time.Date(2020, 6, 14, 0, 0, 0, 0, time.UTC), 29},
		{"on birthday", time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC), 30},
		{"day after birthday", time.Date(2020, 6, 16, 0, 0, 0, 0, time.UTC), 30},
		{"earlier month", time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Age(birth, tt.at))
		})
	}
}
