package privacy

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/gmsas95/vitalbase/internal/store"
)

// Level is the disclosure level of a data category. The set is closed;
// anything else fails validation.
type Level string

const (
	LevelPrivate     Level = "private"
	LevelFriendsOnly Level = "friends_only"
	LevelPublic      Level = "public"
)

// Valid reports whether the level is one of the closed set
func (l Level) Valid() bool {
	switch l {
	case LevelPrivate, LevelFriendsOnly, LevelPublic:
		return true
	}
	return false
}

// Category groups the disclosed data. The set is closed.
type Category string

const (
	CategoryBasicInfo        Category = "basic_info"
	CategoryHealthData       Category = "health_data"
	CategoryMedicalInfo      Category = "medical_info"
	CategoryEmergencyContact Category = "emergency_contact"
	CategoryBodyMeasurements Category = "body_measurements"
	CategoryVitalSigns       Category = "vital_signs"
)

// Categories lists every category in declaration order
var Categories = []Category{
	CategoryBasicInfo,
	CategoryHealthData,
	CategoryMedicalInfo,
	CategoryEmergencyContact,
	CategoryBodyMeasurements,
	CategoryVitalSigns,
}

// Valid reports whether the category is one of the closed set
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Field identifies one disclosable value inside a category
type Field string

const (
	FieldBirthDate         Field = "birth_date"
	FieldGender            Field = "gender"
	FieldBloodType         Field = "blood_type"
	FieldRegion            Field = "region"
	FieldHeight            Field = "height"
	FieldWeight            Field = "weight"
	FieldBodyFat           Field = "body_fat"
	FieldActivityLevel     Field = "activity_level"
	FieldMedicalConditions Field = "medical_conditions"
	FieldMedications       Field = "medications"
	FieldAllergies         Field = "allergies"
	FieldDoctorInfo        Field = "doctor_info"
	FieldInsurance         Field = "insurance"
	FieldEmergencyContact  Field = "emergency_contact"
	FieldBodyMeasurements  Field = "body_measurements"
	FieldVitalSigns        Field = "vital_signs"
)

// fieldCategories maps each field to the category whose level gates it
var fieldCategories = map[Field]Category{
	FieldBirthDate:         CategoryBasicInfo,
	FieldGender:            CategoryBasicInfo,
	FieldBloodType:         CategoryBasicInfo,
	FieldRegion:            CategoryBasicInfo,
	FieldHeight:            CategoryHealthData,
	FieldWeight:            CategoryHealthData,
	FieldBodyFat:           CategoryHealthData,
	FieldActivityLevel:     CategoryHealthData,
	FieldMedicalConditions: CategoryMedicalInfo,
	FieldMedications:       CategoryMedicalInfo,
	FieldAllergies:         CategoryMedicalInfo,
	FieldDoctorInfo:        CategoryMedicalInfo,
	FieldInsurance:         CategoryMedicalInfo,
	FieldEmergencyContact:  CategoryEmergencyContact,
	FieldBodyMeasurements:  CategoryBodyMeasurements,
	FieldVitalSigns:        CategoryVitalSigns,
}

// CategoryForField resolves a field to its category; ok is false for
// unknown fields so callers can fail closed.
func CategoryForField(f Field) (Category, bool) {
	c, ok := fieldCategories[f]
	return c, ok
}

// RequestStatus of an access request
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusDenied   RequestStatus = "denied"
)

// Settings holds one user's disclosure policy. The zero value is not
// meaningful; use DefaultSettings.
type Settings struct {
	UserID string `gorm:"primaryKey" json:"user_id"`

	BasicInfoLevel        Level `json:"basic_info_level"`
	HealthDataLevel       Level `json:"health_data_level"`
	MedicalInfoLevel      Level `json:"medical_info_level"`
	EmergencyContactLevel Level `json:"emergency_contact_level"`
	BodyMeasurementsLevel Level `json:"body_measurements_level"`
	VitalSignsLevel       Level `json:"vital_signs_level"`

	BirthDateVisible         bool `json:"birth_date_visible"`
	GenderVisible            bool `json:"gender_visible"`
	BloodTypeVisible         bool `json:"blood_type_visible"`
	RegionVisible            bool `json:"region_visible"`
	HeightVisible            bool `json:"height_visible"`
	WeightVisible            bool `json:"weight_visible"`
	BodyFatVisible           bool `json:"body_fat_visible"`
	ActivityLevelVisible     bool `json:"activity_level_visible"`
	MedicalConditionsVisible bool `json:"medical_conditions_visible"`
	MedicationsVisible       bool `json:"medications_visible"`
	AllergiesVisible         bool `json:"allergies_visible"`
	DoctorInfoVisible        bool `json:"doctor_info_visible"`
	InsuranceVisible         bool `json:"insurance_visible"`
	EmergencyContactVisible  bool `json:"emergency_contact_visible"`
	BodyMeasurementsVisible  bool `json:"body_measurements_visible"`
	VitalSignsVisible        bool `json:"vital_signs_visible"`

	AllowDataSharing bool `json:"allow_data_sharing"`
	ShareWithFriends bool `json:"share_with_friends"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSettings is the policy used when a user has no stored row:
// everything private, every field hidden, sharing off.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:                userID,
		BasicInfoLevel:        LevelPrivate,
		HealthDataLevel:       LevelPrivate,
		MedicalInfoLevel:      LevelPrivate,
		EmergencyContactLevel: LevelPrivate,
		BodyMeasurementsLevel: LevelPrivate,
		VitalSignsLevel:       LevelPrivate,
	}
}

// CategoryLevel returns the disclosure level of a category. Unknown
// categories read as private.
func (s *Settings) CategoryLevel(c Category) Level {
	switch c {
	case CategoryBasicInfo:
		return s.BasicInfoLevel
	case CategoryHealthData:
		return s.HealthDataLevel
	case CategoryMedicalInfo:
		return s.MedicalInfoLevel
	case CategoryEmergencyContact:
		return s.EmergencyContactLevel
	case CategoryBodyMeasurements:
		return s.BodyMeasurementsLevel
	case CategoryVitalSigns:
		return s.VitalSignsLevel
	default:
		return LevelPrivate
	}
}

// FieldVisible returns the per-field flag. Unknown fields read as
// hidden.
func (s *Settings) FieldVisible(f Field) bool {
	switch f {
	case FieldBirthDate:
		return s.BirthDateVisible
	case FieldGender:
		return s.GenderVisible
	case FieldBloodType:
		return s.BloodTypeVisible
	case FieldRegion:
		return s.RegionVisible
	case FieldHeight:
		return s.HeightVisible
	case FieldWeight:
		return s.WeightVisible
	case FieldBodyFat:
		return s.BodyFatVisible
	case FieldActivityLevel:
		return s.ActivityLevelVisible
	case FieldMedicalConditions:
		return s.MedicalConditionsVisible
	case FieldMedications:
		return s.MedicationsVisible
	case FieldAllergies:
		return s.AllergiesVisible
	case FieldDoctorInfo:
		return s.DoctorInfoVisible
	case FieldInsurance:
		return s.InsuranceVisible
	case FieldEmergencyContact:
		return s.EmergencyContactVisible
	case FieldBodyMeasurements:
		return s.BodyMeasurementsVisible
	case FieldVitalSigns:
		return s.VitalSignsVisible
	default:
		return false
	}
}

// SettingsPatch is a merge-patch over Settings. Nil fields leave the
// stored value untouched.
type SettingsPatch struct {
	BasicInfoLevel        *Level `json:"basic_info_level,omitempty"`
	HealthDataLevel       *Level `json:"health_data_level,omitempty"`
	MedicalInfoLevel      *Level `json:"medical_info_level,omitempty"`
	EmergencyContactLevel *Level `json:"emergency_contact_level,omitempty"`
	BodyMeasurementsLevel *Level `json:"body_measurements_level,omitempty"`
	VitalSignsLevel       *Level `json:"vital_signs_level,omitempty"`

	BirthDateVisible         *bool `json:"birth_date_visible,omitempty"`
	GenderVisible            *bool `json:"gender_visible,omitempty"`
	BloodTypeVisible         *bool `json:"blood_type_visible,omitempty"`
	RegionVisible            *bool `json:"region_visible,omitempty"`
	HeightVisible            *bool `json:"height_visible,omitempty"`
	WeightVisible            *bool `json:"weight_visible,omitempty"`
	BodyFatVisible           *bool `json:"body_fat_visible,omitempty"`
	ActivityLevelVisible     *bool `json:"activity_level_visible,omitempty"`
	MedicalConditionsVisible *bool `json:"medical_conditions_visible,omitempty"`
	MedicationsVisible       *bool `json:"medications_visible,omitempty"`
	AllergiesVisible         *bool `json:"allergies_visible,omitempty"`
	DoctorInfoVisible        *bool `json:"doctor_info_visible,omitempty"`
	InsuranceVisible         *bool `json:"insurance_visible,omitempty"`
	EmergencyContactVisible  *bool `json:"emergency_contact_visible,omitempty"`
	BodyMeasurementsVisible  *bool `json:"body_measurements_visible,omitempty"`
	VitalSignsVisible        *bool `json:"vital_signs_visible,omitempty"`

	AllowDataSharing *bool `json:"allow_data_sharing,omitempty"`
	ShareWithFriends *bool `json:"share_with_friends,omitempty"`
}

// AccessRequest asks a target user to disclose categories to the
// requester. Status transitions exactly once, pending to approved or
// denied.
type AccessRequest struct {
	ID              string `gorm:"primaryKey" json:"id"`
	RequesterUserID string `gorm:"index" json:"requester_user_id"`
	TargetUserID    string `gorm:"index" json:"target_user_id"`

	Categories     []Category    `gorm:"-" json:"requested_categories"`
	CategoriesJSON string        `gorm:"column:categories;type:text" json:"-"`
	Reason         string        `json:"reason"`
	Status         RequestStatus `gorm:"index" json:"status"`
	ResponseNote   string        `json:"response_note,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// BeforeCreate hook for AccessRequest
func (r *AccessRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = store.NewID("req")
	}
	return r.packCategories()
}

// BeforeSave hook keeps the serialized column in sync
func (r *AccessRequest) BeforeSave(tx *gorm.DB) error {
	return r.packCategories()
}

// AfterFind hook restores the category slice
func (r *AccessRequest) AfterFind(tx *gorm.DB) error {
	return r.unpackCategories()
}

func (r *AccessRequest) packCategories() error {
	if r.Categories == nil {
		r.Categories = []Category{}
	}
	data, err := json.Marshal(r.Categories)
	if err != nil {
		return err
	}
	r.CategoriesJSON = string(data)
	return nil
}

func (r *AccessRequest) unpackCategories() error {
	if r.CategoriesJSON == "" {
		r.Categories = []Category{}
		return nil
	}
	return json.Unmarshal([]byte(r.CategoriesJSON), &r.Categories)
}

// Covers reports whether the request asks for the given category
func (r *AccessRequest) Covers(c Category) bool {
	for _, rc := range r.Categories {
		if rc == c {
			return true
		}
	}
	return false
}
