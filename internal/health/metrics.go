package health

import (
	"fmt"
	"math"
	"time"

	"github.com/gmsas95/vitalbase/internal/errors"
)

// Kilocalories stored in one kilogram of body fat.
const kcalPerKg = 7700.0

// Default horizon for a weight-change plan.
const defaultPlanWeeks = 12.0

const (
	maxWeeklyLossKg = 1.0
	maxWeeklyGainKg = 0.5
	minDailyKcal    = 1200.0
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary: 1.2,
	ActivityLight:     1.375,
	ActivityModerate:  1.55,
	ActivityHigh:      1.725,
	ActivityVeryHigh:  1.9,
}

// BMI computes the body mass index from weight and height.
func BMI(weightKg, heightCm float64) (float64, error) {
	if heightCm <= 0 {
		return 0, errors.InvalidInput("height_cm must be positive")
	}
	if weightKg <= 0 {
		return 0, errors.InvalidInput("weight_kg must be positive")
	}
	heightM := heightCm / 100
	return weightKg / (heightM * heightM), nil
}

// CategoryForBMI maps a BMI value onto its band. Each band includes
// its lower bound.
func CategoryForBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25.0:
		return BMINormal
	case bmi < 30.0:
		return BMIObesityClass1
	case bmi < 35.0:
		return BMIObesityClass2
	default:
		return BMIObesityClass3
	}
}

// BMR estimates the basal metabolic rate with the Harris-Benedict
// formulas. Other and unspecified genders get the average of the male
// and female estimates.
func BMR(weightKg, heightCm, ageYears float64, gender Gender) (float64, error) {
	if weightKg <= 0 {
		return 0, errors.InvalidInput("weight_kg must be positive")
	}
	if heightCm <= 0 {
		return 0, errors.InvalidInput("height_cm must be positive")
	}
	if ageYears <= 0 {
		return 0, errors.InvalidInput("age_years must be positive")
	}

	male := 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*ageYears
	female := 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*ageYears

	switch gender {
	case GenderMale:
		return male, nil
	case GenderFemale:
		return female, nil
	case GenderOther, GenderUnspecified, "":
		return (male + female) / 2, nil
	default:
		return 0, errors.InvalidInput("unknown gender: " + string(gender))
	}
}

// DailyCalories scales a BMR by the activity multiplier. An unknown
// level is rejected rather than silently treated as sedentary.
func DailyCalories(bmr float64, activity ActivityLevel) (float64, error) {
	if bmr <= 0 {
		return 0, errors.InvalidInput("bmr must be positive")
	}
	mult, ok := activityMultipliers[activity]
	if !ok {
		return 0, errors.InvalidInput("unknown activity_level: " + string(activity))
	}
	return bmr * mult, nil
}

// WeightChangePlan builds guidance for moving from the current weight
// to the target. The weekly pace spreads the gap over twelve weeks and
// is capped at 1.0 kg/week for loss and 0.5 kg/week for gain; the
// calorie adjustment is a flat 500 kcal in the plan's direction,
// floored at 1200 kcal/day.
func WeightChangePlan(currentKg, targetKg, dailyCalories float64) Plan {
	diff := currentKg - targetKg

	plan := Plan{
		CurrentWeightKg: currentKg,
		TargetWeightKg:  targetKg,
		Recommendations: []string{},
	}

	switch {
	case diff > 0:
		plan.Direction = PlanLoss
		weekly := diff / defaultPlanWeeks
		if weekly > maxWeeklyLossKg {
			weekly = maxWeeklyLossKg
		}
		plan.WeeklyChangeKg = round1(weekly)
		plan.TargetDailyCalories = math.Max(minDailyKcal, dailyCalories-500)
	case diff < 0:
		plan.Direction = PlanGain
		weekly := -diff / defaultPlanWeeks
		if weekly > maxWeeklyGainKg {
			weekly = maxWeeklyGainKg
		}
		plan.WeeklyChangeKg = round1(weekly)
		plan.TargetDailyCalories = math.Max(minDailyKcal, dailyCalories+500)
	default:
		plan.Direction = PlanMaintain
		plan.WeeklyChangeKg = 0
		plan.TargetDailyCalories = math.Max(minDailyKcal, dailyCalories)
	}

	if plan.WeeklyChangeKg > 0 {
		plan.DailyEnergyGapKcal = round1(plan.WeeklyChangeKg * kcalPerKg / 7)
		plan.EstimatedWeeks = int(math.Ceil(math.Abs(diff) / plan.WeeklyChangeKg))
	}

	plan.Recommendations = recommendationsFor(plan.Direction, math.Abs(diff))
	return plan
}

func recommendationsFor(direction PlanDirection, gapKg float64) []string {
	switch direction {
	case PlanLoss:
		recs := []string{
			"Aim for a steady calorie deficit; avoid crash dieting",
			"Combine cardio with resistance training to preserve muscle",
		}
		if gapKg > 10 {
			recs = append(recs, fmt.Sprintf("A %.1f kg goal is significant; consider medical supervision", gapKg))
		}
		return recs
	case PlanGain:
		recs := []string{
			"Favor protein-dense meals to support lean mass gain",
			"Pair the calorie surplus with strength training",
		}
		if gapKg > 10 {
			recs = append(recs, fmt.Sprintf("A %.1f kg goal is significant; increase intake gradually", gapKg))
		}
		return recs
	default:
		return []string{
			"You are at your target weight; keep your current routine",
			"Re-measure weekly to catch drift early",
		}
	}
}

// IdealWeight derives the weight that would put the user at BMI 22.
func IdealWeight(heightCm float64) (float64, error) {
	if heightCm <= 0 {
		return 0, errors.InvalidInput("height_cm must be positive")
	}
	heightM := heightCm / 100
	return 22.0 * heightM * heightM, nil
}

// BodyFatMass converts a body fat percentage into kilograms of fat.
func BodyFatMass(weightKg, bodyFatPercent float64) (float64, error) {
	if weightKg <= 0 {
		return 0, errors.InvalidInput("weight_kg must be positive")
	}
	if bodyFatPercent < 0 || bodyFatPercent > 100 {
		return 0, errors.InvalidInput("body_fat_percentage must be in [0, 100]")
	}
	return weightKg * bodyFatPercent / 100, nil
}

// LeanBodyMass is the weight remaining after fat mass.
func LeanBodyMass(weightKg, bodyFatPercent float64) (float64, error) {
	fat, err := BodyFatMass(weightKg, bodyFatPercent)
	if err != nil {
		return 0, err
	}
	return weightKg - fat, nil
}

// Age returns whole years between birth and at, floored. The year
// difference is reduced by one until the birthday has passed.
func Age(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
