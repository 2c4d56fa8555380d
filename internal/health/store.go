package health

import (
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gmsas95/vitalbase/internal/errors"
)

// Store persists profiles, measurements, and vital signs
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a health store and runs its migrations
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&HealthProfile{}, &BodyMeasurement{}, &VitalSign{}); err != nil {
		return nil, fmt.Errorf("failed to migrate health tables: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// ==================== Profile Methods ====================

// SaveProfile creates or updates the user's profile after validation
func (s *Store) SaveProfile(profile *HealthProfile) (*HealthProfile, error) {
	if err := profile.Validate(time.Now()); err != nil {
		return nil, err
	}

	existing, err := s.GetProfile(profile.UserID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := s.db.Create(profile).Error; err != nil {
			return nil, err
		}
		s.logger.Info("created health profile", zap.String("user_id", profile.UserID))
		return profile, nil
	}

	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt
	if err := s.db.Save(profile).Error; err != nil {
		return nil, err
	}
	s.logger.Debug("updated health profile", zap.String("user_id", profile.UserID))
	return profile, nil
}

// GetProfile retrieves a user's profile, nil when absent
func (s *Store) GetProfile(userID string) (*HealthProfile, error) {
	var profile HealthProfile
	if err := s.db.First(&profile, "user_id = ?", userID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// ==================== Measurement Methods ====================

// CreateMeasurement records a new body measurement
func (s *Store) CreateMeasurement(m *BodyMeasurement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.MeasurementDate.IsZero() {
		m.MeasurementDate = time.Now()
	}
	return s.db.Create(m).Error
}

// GetMeasurement retrieves one measurement by ID for its owner
func (s *Store) GetMeasurement(userID, id string) (*BodyMeasurement, error) {
	var m BodyMeasurement
	if err := s.db.First(&m, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrMeasurementNotFound
		}
		return nil, err
	}
	return &m, nil
}

// LatestMeasurement returns the most recent measurement, nil when the
// user has none. Same-date rows resolve to the last inserted one.
func (s *Store) LatestMeasurement(userID string) (*BodyMeasurement, error) {
	var m BodyMeasurement
	err := s.db.Where("user_id = ?", userID).
		Order("measurement_date DESC, created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListMeasurements returns the user's history, most recent first
func (s *Store) ListMeasurements(userID string, limit, offset int) ([]BodyMeasurement, error) {
	var ms []BodyMeasurement
	err := s.db.Where("user_id = ?", userID).
		Order("measurement_date DESC, created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&ms).Error
	return ms, err
}

// UpdateMeasurement updates an owned measurement
func (s *Store) UpdateMeasurement(m *BodyMeasurement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.db.Save(m).Error
}

// DeleteMeasurement removes an owned measurement
func (s *Store) DeleteMeasurement(userID, id string) error {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&BodyMeasurement{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrMeasurementNotFound
	}
	return nil
}

// ==================== Vital Sign Methods ====================

// CreateVital records a new vital sign entry
func (s *Store) CreateVital(v *VitalSign) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if v.RecordedAt.IsZero() {
		v.RecordedAt = time.Now()
	}
	return s.db.Create(v).Error
}

// GetVital retrieves one vital record by ID for its owner
func (s *Store) GetVital(userID, id string) (*VitalSign, error) {
	var v VitalSign
	if err := s.db.First(&v, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrVitalNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListVitals returns the user's vitals history, most recent first
func (s *Store) ListVitals(userID string, limit, offset int) ([]VitalSign, error) {
	var vs []VitalSign
	err := s.db.Where("user_id = ?", userID).
		Order("recorded_at DESC, created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&vs).Error
	return vs, err
}

// UpdateVital updates an owned vital record
func (s *Store) UpdateVital(v *VitalSign) error {
	if err := v.Validate(); err != nil {
		return err
	}
	return s.db.Save(v).Error
}

// DeleteVital removes an owned vital record
func (s *Store) DeleteVital(userID, id string) error {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&VitalSign{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrVitalNotFound
	}
	return nil
}

// ==================== Aggregate Methods ====================

// Stats summarizes the user's recorded data
func (s *Store) Stats(userID string) (*HealthStats, error) {
	stats := &HealthStats{}

	if err := s.db.Model(&BodyMeasurement{}).Where("user_id = ?", userID).Count(&stats.MeasurementCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&VitalSign{}).Where("user_id = ?", userID).Count(&stats.VitalCount).Error; err != nil {
		return nil, err
	}

	latest, err := s.LatestMeasurement(userID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		stats.LatestWeightKg = &latest.WeightKg
		stats.LatestBodyFat = latest.BodyFatPercentage
		stats.LastMeasurementDate = &latest.MeasurementDate
	}

	vitals, err := s.ListVitals(userID, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(vitals) > 0 {
		stats.LatestHeartRate = vitals[0].HeartRate
	}

	return stats, nil
}
