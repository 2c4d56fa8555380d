package health

import (
	"time"

	"gorm.io/gorm"

	"github.com/gmsas95/vitalbase/internal/errors"
	"github.com/gmsas95/vitalbase/internal/store"
)

// Gender as recorded on the profile
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUnspecified Gender = "unspecified"
)

// ActivityLevel selects the daily-calorie multiplier
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityHigh      ActivityLevel = "high"
	ActivityVeryHigh  ActivityLevel = "very_high"
)

// Valid reports whether the level is one of the closed set
func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityHigh, ActivityVeryHigh:
		return true
	}
	return false
}

// BMICategory bands. Lower bounds are inclusive, so exactly 25.0 is
// obesity_class_1.
type BMICategory string

const (
	BMIUnderweight   BMICategory = "underweight"
	BMINormal        BMICategory = "normal"
	BMIObesityClass1 BMICategory = "obesity_class_1"
	BMIObesityClass2 BMICategory = "obesity_class_2"
	BMIObesityClass3 BMICategory = "obesity_class_3"
)

// PlanDirection of a weight-change plan
type PlanDirection string

const (
	PlanLoss     PlanDirection = "loss"
	PlanGain     PlanDirection = "gain"
	PlanMaintain PlanDirection = "maintain"
)

// Plan is the weight-change guidance produced for a user
type Plan struct {
	Direction           PlanDirection `json:"direction"`
	CurrentWeightKg     float64       `json:"current_weight_kg"`
	TargetWeightKg      float64       `json:"target_weight_kg"`
	WeeklyChangeKg      float64       `json:"weekly_change_kg"`
	DailyEnergyGapKcal  float64       `json:"daily_energy_gap_kcal"`
	TargetDailyCalories float64       `json:"target_daily_calories"`
	EstimatedWeeks      int           `json:"estimated_weeks"`
	Recommendations     []string      `json:"recommendations"`
}

// Calculations bundles the derived metrics for a snapshot. Pointer
// fields are omitted when the inputs they need are unavailable; a
// missing field is never replaced by a guessed number.
type Calculations struct {
	CurrentBMI     *float64     `json:"current_bmi,omitempty"`
	BMICategory    *BMICategory `json:"bmi_category,omitempty"`
	TargetBMI      *float64     `json:"target_bmi,omitempty"`
	IdealWeightKg  *float64     `json:"ideal_weight_kg,omitempty"`
	AgeYears       *int         `json:"age_years,omitempty"`
	BMR            *float64     `json:"bmr,omitempty"`
	DailyCalories  *float64     `json:"daily_calories,omitempty"`
	BodyFatMassKg  *float64     `json:"body_fat_mass_kg,omitempty"`
	LeanBodyMassKg *float64     `json:"lean_body_mass_kg,omitempty"`
	WeightPlan     *Plan        `json:"weight_plan,omitempty"`
}

// Trend compares the latest weight against the target
type Trend struct {
	CurrentWeightKg float64 `json:"current_weight_kg"`
	TargetWeightKg  float64 `json:"target_weight_kg"`
	DifferenceKg    float64 `json:"difference_kg"`
	ProgressPercent float64 `json:"progress_percent"`
}

// Snapshot is the ephemeral view of a user's health state. It is
// rebuilt on every request and never persisted.
type Snapshot struct {
	UserID            string           `json:"user_id"`
	GeneratedAt       time.Time        `json:"generated_at"`
	Profile           *HealthProfile   `json:"profile"`
	LatestMeasurement *BodyMeasurement `json:"latest_measurement,omitempty"`
	Calculations      Calculations     `json:"calculations"`
	Trend             *Trend           `json:"trend,omitempty"`
}

// HealthProfile holds a user's static health data
type HealthProfile struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"uniqueIndex" json:"user_id"`

	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    Gender     `json:"gender"`
	BloodType string     `json:"blood_type,omitempty"`
	Region    string     `json:"region,omitempty"`

	HeightCm                float64       `json:"height_cm"`
	TargetWeightKg          float64       `json:"target_weight_kg"`
	TargetBodyFatPercentage *float64      `json:"target_body_fat_percentage,omitempty"`
	ActivityLevel           ActivityLevel `json:"activity_level"`

	MedicalConditions string `json:"medical_conditions,omitempty"`
	Medications       string `json:"medications,omitempty"`
	Allergies         string `json:"allergies,omitempty"`

	EmergencyContactName  string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string `json:"emergency_contact_phone,omitempty"`
	DoctorName            string `json:"doctor_name,omitempty"`
	DoctorPhone           string `json:"doctor_phone,omitempty"`
	InsuranceNumber       string `json:"insurance_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook for HealthProfile
func (p *HealthProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = store.NewID("prof")
	}
	return nil
}

// Validate checks the profile invariants
func (p *HealthProfile) Validate(now time.Time) error {
	if p.HeightCm <= 0 || p.HeightCm > 250 {
		return errors.InvalidInput("height_cm must be in (0, 250]")
	}
	if p.TargetWeightKg <= 0 || p.TargetWeightKg > 300 {
		return errors.InvalidInput("target_weight_kg must be in (0, 300]")
	}
	if p.BirthDate != nil && p.BirthDate.After(now) {
		return errors.InvalidInput("birth_date must not be in the future")
	}
	if p.ActivityLevel != "" && !p.ActivityLevel.Valid() {
		return errors.InvalidInput("unknown activity_level: " + string(p.ActivityLevel))
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther, GenderUnspecified, "":
	default:
		return errors.InvalidInput("unknown gender: " + string(p.Gender))
	}
	return nil
}

// BodyMeasurement is one timestamped weight record
type BodyMeasurement struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index:idx_measure_user_date" json:"user_id"`

	WeightKg          float64  `json:"weight_kg"`
	BodyFatPercentage *float64 `json:"body_fat_percentage,omitempty"`
	Notes             string   `json:"notes,omitempty"`

	MeasurementDate time.Time `gorm:"index:idx_measure_user_date" json:"measurement_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate hook for BodyMeasurement
func (m *BodyMeasurement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = store.NewID("meas")
	}
	return nil
}

// Validate checks the measurement invariants
func (m *BodyMeasurement) Validate() error {
	if m.WeightKg <= 0 || m.WeightKg > 500 {
		return errors.InvalidInput("weight_kg must be in (0, 500]")
	}
	if m.BodyFatPercentage != nil && (*m.BodyFatPercentage < 0 || *m.BodyFatPercentage > 100) {
		return errors.InvalidInput("body_fat_percentage must be in [0, 100]")
	}
	return nil
}

// VitalSign is one timestamped vitals record
type VitalSign struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index:idx_vital_user_date" json:"user_id"`

	TemperatureCelsius *float64 `json:"temperature_celsius,omitempty"`
	SystolicBP         *int     `json:"systolic_bp,omitempty"`
	DiastolicBP        *int     `json:"diastolic_bp,omitempty"`
	HeartRate          *int     `json:"heart_rate,omitempty"`
	Notes              string   `json:"notes,omitempty"`

	RecordedAt time.Time `gorm:"index:idx_vital_user_date" json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate hook for VitalSign
func (v *VitalSign) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = store.NewID("vital")
	}
	return nil
}

// Validate checks the vital sign invariants
func (v *VitalSign) Validate() error {
	if v.TemperatureCelsius == nil && v.SystolicBP == nil && v.DiastolicBP == nil && v.HeartRate == nil {
		return errors.InvalidInput("at least one vital sign value is required")
	}
	if v.TemperatureCelsius != nil && (*v.TemperatureCelsius < 25 || *v.TemperatureCelsius > 45) {
		return errors.InvalidInput("temperature_celsius must be in [25, 45]")
	}
	if v.SystolicBP != nil && (*v.SystolicBP <= 0 || *v.SystolicBP > 300) {
		return errors.InvalidInput("systolic_bp must be in (0, 300]")
	}
	if v.DiastolicBP != nil && (*v.DiastolicBP <= 0 || *v.DiastolicBP > 200) {
		return errors.InvalidInput("diastolic_bp must be in (0, 200]")
	}
	if v.HeartRate != nil && (*v.HeartRate <= 0 || *v.HeartRate > 300) {
		return errors.InvalidInput("heart_rate must be in (0, 300]")
	}
	return nil
}

// HealthStats is the aggregate view over a user's records
type HealthStats struct {
	MeasurementCount    int64      `json:"measurement_count"`
	VitalCount          int64      `json:"vital_count"`
	LatestWeightKg      *float64   `json:"latest_weight_kg,omitempty"`
	LatestBodyFat       *float64   `json:"latest_body_fat,omitempty"`
	LatestHeartRate     *int       `json:"latest_heart_rate,omitempty"`
	LastMeasurementDate *time.Time `json:"last_measurement_date,omitempty"`
}
