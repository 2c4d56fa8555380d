package privacy

import (
	"time"

	"github.com/gmsas95/vitalbase/internal/health"
)

// Decision is the outcome of a disclosure check
type Decision string

const (
	Visible Decision = "visible"
	Hidden  Decision = "hidden"
)

// View decides whether viewer may see a category of target's data.
// Rules apply in order, first match wins:
//  1. viewer is the target
//  2. category level is public
//  3. an approved request from viewer covers the category
//  4. otherwise hidden
//
// Unknown categories are hidden. The function is pure; it sees only
// the settings snapshot and the approved requests passed in.
func View(viewerID, targetID string, settings *Settings, approved []AccessRequest, category Category) Decision {
	if viewerID == targetID {
		return Visible
	}
	if settings == nil || !category.Valid() {
		return Hidden
	}

	switch settings.CategoryLevel(category) {
	case LevelPublic:
		return Visible
	case LevelFriendsOnly, LevelPrivate:
		for _, req := range approved {
			if req.Status == StatusApproved && req.RequesterUserID == viewerID && req.Covers(category) {
				return Visible
			}
		}
		return Hidden
	default:
		return Hidden
	}
}

// ViewField narrows a category decision to one field. The per-field
// flag only restricts: a hidden category stays hidden no matter the
// flag, and the owner always sees their own fields.
func ViewField(viewerID, targetID string, settings *Settings, approved []AccessRequest, field Field) Decision {
	if viewerID == targetID {
		return Visible
	}

	category, ok := CategoryForField(field)
	if !ok {
		return Hidden
	}
	if View(viewerID, targetID, settings, approved, category) == Hidden {
		return Hidden
	}
	if settings != nil && !settings.FieldVisible(field) {
		return Hidden
	}
	return Visible
}

// FilteredView is the disclosure-shaped slice of a target's data.
// Absent fields were withheld, not empty.
type FilteredView struct {
	UserID string `json:"user_id"`

	BirthDate *time.Time     `json:"birth_date,omitempty"`
	Gender    *health.Gender `json:"gender,omitempty"`
	BloodType *string        `json:"blood_type,omitempty"`
	Region    *string        `json:"region,omitempty"`

	HeightCm          *float64              `json:"height_cm,omitempty"`
	WeightKg          *float64              `json:"weight_kg,omitempty"`
	BodyFatPercentage *float64              `json:"body_fat_percentage,omitempty"`
	ActivityLevel     *health.ActivityLevel `json:"activity_level,omitempty"`

	MedicalConditions *string `json:"medical_conditions,omitempty"`
	Medications       *string `json:"medications,omitempty"`
	Allergies         *string `json:"allergies,omitempty"`
	DoctorName        *string `json:"doctor_name,omitempty"`
	DoctorPhone       *string `json:"doctor_phone,omitempty"`
	InsuranceNumber   *string `json:"insurance_number,omitempty"`

	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`

	LatestMeasurement *health.BodyMeasurement `json:"latest_measurement,omitempty"`
	LatestVital       *health.VitalSign       `json:"latest_vital,omitempty"`
}

// FilterProfile shapes the disclosed view of a target's profile and
// latest records for a viewer. Each field appears only when its
// per-field decision is Visible.
func FilterProfile(viewerID string, profile *health.HealthProfile, latest *health.BodyMeasurement, vital *health.VitalSign, settings *Settings, approved []AccessRequest) *FilteredView {
	if profile == nil {
		return nil
	}

	view := &FilteredView{UserID: profile.UserID}
	show := func(f Field) bool {
		return ViewField(viewerID, profile.UserID, settings, approved, f) == Visible
	}

	if show(FieldBirthDate) {
		view.BirthDate = profile.BirthDate
	}
	if show(FieldGender) && profile.Gender != "" {
		view.Gender = &profile.Gender
	}
	if show(FieldBloodType) && profile.BloodType != "" {
		view.BloodType = &profile.BloodType
	}
	if show(FieldRegion) && profile.Region != "" {
		view.Region = &profile.Region
	}

	if show(FieldHeight) && profile.HeightCm > 0 {
		view.HeightCm = &profile.HeightCm
	}
	if show(FieldActivityLevel) && profile.ActivityLevel != "" {
		view.ActivityLevel = &profile.ActivityLevel
	}
	if latest != nil {
		if show(FieldWeight) {
			view.WeightKg = &latest.WeightKg
		}
		if show(FieldBodyFat) {
			view.BodyFatPercentage = latest.BodyFatPercentage
		}
	}

	if show(FieldMedicalConditions) && profile.MedicalConditions != "" {
		view.MedicalConditions = &profile.MedicalConditions
	}
	if show(FieldMedications) && profile.Medications != "" {
		view.Medications = &profile.Medications
	}
	if show(FieldAllergies) && profile.Allergies != "" {
		view.Allergies = &profile.Allergies
	}
	if show(FieldDoctorInfo) {
		if profile.DoctorName != "" {
			view.DoctorName = &profile.DoctorName
		}
		if profile.DoctorPhone != "" {
			view.DoctorPhone = &profile.DoctorPhone
		}
	}
	if show(FieldInsurance) && profile.InsuranceNumber != "" {
		view.InsuranceNumber = &profile.InsuranceNumber
	}

	if show(FieldEmergencyContact) {
		if profile.EmergencyContactName != "" {
			view.EmergencyContactName = &profile.EmergencyContactName
		}
		if profile.EmergencyContactPhone != "" {
			view.EmergencyContactPhone = &profile.EmergencyContactPhone
		}
	}

	if show(FieldBodyMeasurements) {
		view.LatestMeasurement = latest
	}
	if show(FieldVitalSigns) {
		view.LatestVital = vital
	}

	return view
}
