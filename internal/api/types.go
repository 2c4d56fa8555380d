package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gmsas95/vitalbase/internal/errors"
	"github.com/gmsas95/vitalbase/internal/health"
	"github.com/gmsas95/vitalbase/internal/privacy"
)

type loginRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
}

type profileRequest struct {
	BirthDate               *time.Time `json:"birth_date,omitempty"`
	Gender                  string     `json:"gender,omitempty"`
	BloodType               string     `json:"blood_type,omitempty"`
	Region                  string     `json:"region,omitempty"`
	HeightCm                float64    `json:"height_cm"`
	TargetWeightKg          float64    `json:"target_weight_kg"`
	TargetBodyFatPercentage *float64   `json:"target_body_fat_percentage,omitempty"`
	ActivityLevel           string     `json:"activity_level,omitempty"`
	MedicalConditions       string     `json:"medical_conditions,omitempty"`
	Medications             string     `json:"medications,omitempty"`
	Allergies               string     `json:"allergies,omitempty"`
	EmergencyContactName    string     `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone   string     `json:"emergency_contact_phone,omitempty"`
	DoctorName              string     `json:"doctor_name,omitempty"`
	DoctorPhone             string     `json:"doctor_phone,omitempty"`
	InsuranceNumber         string     `json:"insurance_number,omitempty"`
}

func (r *profileRequest) toProfile(userID string) *health.HealthProfile {
	return &health.HealthProfile{
		UserID:                  userID,
		BirthDate:               r.BirthDate,
		Gender:                  health.Gender(r.Gender),
		BloodType:               r.BloodType,
		Region:                  r.Region,
		HeightCm:                r.HeightCm,
		TargetWeightKg:          r.TargetWeightKg,
		TargetBodyFatPercentage: r.TargetBodyFatPercentage,
		ActivityLevel:           health.ActivityLevel(r.ActivityLevel),
		MedicalConditions:       r.MedicalConditions,
		Medications:             r.Medications,
		Allergies:               r.Allergies,
		EmergencyContactName:    r.EmergencyContactName,
		EmergencyContactPhone:   r.EmergencyContactPhone,
		DoctorName:              r.DoctorName,
		DoctorPhone:             r.DoctorPhone,
		InsuranceNumber:         r.InsuranceNumber,
	}
}

type measurementRequest struct {
	WeightKg          float64    `json:"weight_kg"`
	BodyFatPercentage *float64   `json:"body_fat_percentage,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	MeasurementDate   *time.Time `json:"measurement_date,omitempty"`
}

type vitalRequest struct {
	TemperatureCelsius *float64   `json:"temperature_celsius,omitempty"`
	SystolicBP         *int       `json:"systolic_bp,omitempty"`
	DiastolicBP        *int       `json:"diastolic_bp,omitempty"`
	HeartRate          *int       `json:"heart_rate,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	RecordedAt         *time.Time `json:"recorded_at,omitempty"`
}

type accessRequestCreate struct {
	TargetUserID string             `json:"target_user_id"`
	Categories   []privacy.Category `json:"requested_categories"`
	Reason       string             `json:"reason,omitempty"`
}

type accessRequestRespond struct {
	Status privacy.RequestStatus `json:"status"`
	Note   string                `json:"note,omitempty"`
}

// fail maps an internal error onto an HTTP response. AppError codes
// carry the status; anything else is a 500.
func fail(c *fiber.Ctx, err error) error {
	status := 500
	message := "internal error"

	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
		switch appErr.Code {
		case errors.CodeInvalidInput, errors.CodeBadRequest:
			status = 400
		case errors.CodeUnauthorized:
			status = 401
		case errors.CodeForbidden:
			status = 403
		case errors.CodeProfileNotFound, errors.CodeMeasurementNotFound,
			errors.CodeVitalNotFound, errors.CodeRequestNotFound, errors.CodeNotFound:
			status = 404
		case errors.CodeRequestResolved:
			status = 409
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  errors.GetCode(err),
	})
}
