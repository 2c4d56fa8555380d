package health

import (
	"math"
	"time"

	"github.com/gmsas95/vitalbase/internal/errors"
)

// Builder assembles health snapshots. It is stateless; all inputs
// arrive as arguments so Build stays a pure function.
type Builder struct{}

// NewBuilder creates a snapshot builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build combines a profile and the latest measurement into a snapshot.
// A nil profile is an error; a nil measurement is an expected state and
// only narrows which metrics appear. A metric whose inputs are invalid
// is omitted, never replaced by a wrong number.
func (b *Builder) Build(profile *HealthProfile, latest *BodyMeasurement, now time.Time) (*Snapshot, error) {
	if profile == nil {
		return nil, errors.ErrProfileNotFound
	}

	snap := &Snapshot{
		UserID:            profile.UserID,
		GeneratedAt:       now,
		Profile:           profile,
		LatestMeasurement: latest,
	}

	// Metrics derivable from the profile alone.
	if target, err := BMI(profile.TargetWeightKg, profile.HeightCm); err == nil {
		snap.Calculations.TargetBMI = ptr(round2(target))
	}
	if ideal, err := IdealWeight(profile.HeightCm); err == nil {
		snap.Calculations.IdealWeightKg = ptr(round1(ideal))
	}
	if profile.BirthDate != nil && !profile.BirthDate.After(now) {
		age := Age(*profile.BirthDate, now)
		snap.Calculations.AgeYears = &age
	}

	if latest == nil {
		return snap, nil
	}

	if bmi, err := BMI(latest.WeightKg, profile.HeightCm); err == nil {
		snap.Calculations.CurrentBMI = ptr(round2(bmi))
		cat := CategoryForBMI(bmi)
		snap.Calculations.BMICategory = &cat
	}

	if latest.BodyFatPercentage != nil {
		if fat, err := BodyFatMass(latest.WeightKg, *latest.BodyFatPercentage); err == nil {
			snap.Calculations.BodyFatMassKg = ptr(round1(fat))
			snap.Calculations.LeanBodyMassKg = ptr(round1(latest.WeightKg - fat))
		}
	}

	if snap.Calculations.AgeYears != nil {
		if bmr, err := BMR(latest.WeightKg, profile.HeightCm, float64(*snap.Calculations.AgeYears), profile.Gender); err == nil {
			snap.Calculations.BMR = ptr(round1(bmr))
			if cals, err := DailyCalories(bmr, profile.ActivityLevel); err == nil {
				snap.Calculations.DailyCalories = ptr(round1(cals))
				if profile.TargetWeightKg > 0 {
					plan := WeightChangePlan(latest.WeightKg, profile.TargetWeightKg, cals)
					snap.Calculations.WeightPlan = &plan
				}
			}
		}
	}

	if profile.TargetWeightKg > 0 {
		snap.Trend = buildTrend(latest.WeightKg, profile.TargetWeightKg)
	}

	return snap, nil
}

// buildTrend measures how far the latest weight sits from the target.
// Progress is the remaining gap expressed against the target weight,
// clamped to [0, 100]; at the target it reads 100.
func buildTrend(currentKg, targetKg float64) *Trend {
	trend := &Trend{
		CurrentWeightKg: currentKg,
		TargetWeightKg:  targetKg,
		DifferenceKg:    round1(currentKg - targetKg),
	}

	gap := math.Abs(currentKg - targetKg)
	pct := (1 - gap/targetKg) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	trend.ProgressPercent = round1(pct)
	return trend
}

func ptr(v float64) *float64 {
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
