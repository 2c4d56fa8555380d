package privacy

import (
	stderrors "errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gmsas95/vitalbase/internal/errors"
)

// SettingsStore persists per-user privacy settings. Updates to the
// same user are serialized so two concurrent merge-patches cannot
// interleave field by field.
type SettingsStore struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSettingsStore creates the settings store and runs its migration
func NewSettingsStore(db *gorm.DB, logger *zap.Logger) (*SettingsStore, error) {
	if err := db.AutoMigrate(&Settings{}); err != nil {
		return nil, err
	}
	return &SettingsStore{
		db:     db,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

func (s *SettingsStore) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// Get returns the user's settings, synthesizing the all-private
// default when no row exists. The default is not persisted; only an
// explicit update creates a row.
func (s *SettingsStore) Get(userID string) (*Settings, error) {
	settings, _, err := s.load(userID)
	return settings, err
}

func (s *SettingsStore) load(userID string) (*Settings, bool, error) {
	var settings Settings
	if err := s.db.First(&settings, "user_id = ?", userID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultSettings(userID), false, nil
		}
		return nil, false, err
	}
	return &settings, true, nil
}

// Update merge-patches the stored settings (or the default when none
// exist). Fields absent from the patch keep their prior value. The
// whole read-modify-write runs under the user's lock.
func (s *SettingsStore) Update(userID string, patch *SettingsPatch) (*Settings, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	settings, stored, err := s.load(userID)
	if err != nil {
		return nil, err
	}

	applyPatch(settings, patch)

	if stored {
		err = s.db.Save(settings).Error
	} else {
		err = s.db.Create(settings).Error
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("updated privacy settings", zap.String("user_id", userID))
	return settings, nil
}

// Reset replaces the user's settings with the hard-coded default
func (s *SettingsStore) Reset(userID string) (*Settings, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, stored, err := s.load(userID)
	if err != nil {
		return nil, err
	}

	settings := DefaultSettings(userID)
	if stored {
		settings.CreatedAt = existing.CreatedAt
		err = s.db.Save(settings).Error
	} else {
		err = s.db.Create(settings).Error
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("reset privacy settings", zap.String("user_id", userID))
	return settings, nil
}

func validatePatch(patch *SettingsPatch) error {
	if patch == nil {
		return errors.InvalidInput("settings patch is required")
	}
	for _, level := range []*Level{
		patch.BasicInfoLevel,
		patch.HealthDataLevel,
		patch.MedicalInfoLevel,
		patch.EmergencyContactLevel,
		patch.BodyMeasurementsLevel,
		patch.VitalSignsLevel,
	} {
		if level != nil && !level.Valid() {
			return errors.InvalidInput("unknown disclosure level: " + string(*level))
		}
	}
	return nil
}

func applyPatch(s *Settings, p *SettingsPatch) {
	if p.BasicInfoLevel != nil {
		s.BasicInfoLevel = *p.BasicInfoLevel
	}
	if p.HealthDataLevel != nil {
		s.HealthDataLevel = *p.HealthDataLevel
	}
	if p.MedicalInfoLevel != nil {
		s.MedicalInfoLevel = *p.MedicalInfoLevel
	}
	if p.EmergencyContactLevel != nil {
		s.EmergencyContactLevel = *p.EmergencyContactLevel
	}
	if p.BodyMeasurementsLevel != nil {
		s.BodyMeasurementsLevel = *p.BodyMeasurementsLevel
	}
	if p.VitalSignsLevel != nil {
		s.VitalSignsLevel = *p.VitalSignsLevel
	}

	if p.BirthDateVisible != nil {
		s.BirthDateVisible = *p.BirthDateVisible
	}
	if p.GenderVisible != nil {
		s.GenderVisible = *p.GenderVisible
	}
	if p.BloodTypeVisible != nil {
		s.BloodTypeVisible = *p.BloodTypeVisible
	}
	if p.RegionVisible != nil {
		s.RegionVisible = *p.RegionVisible
	}
	if p.HeightVisible != nil {
		s.HeightVisible = *p.HeightVisible
	}
	if p.WeightVisible != nil {
		s.WeightVisible = *p.WeightVisible
	}
	if p.BodyFatVisible != nil {
		s.BodyFatVisible = *p.BodyFatVisible
	}
	if p.ActivityLevelVisible != nil {
		s.ActivityLevelVisible = *p.ActivityLevelVisible
	}
	if p.MedicalConditionsVisible != nil {
		s.MedicalConditionsVisible = *p.MedicalConditionsVisible
	}
	if p.MedicationsVisible != nil {
		s.MedicationsVisible = *p.MedicationsVisible
	}
	if p.AllergiesVisible != nil {
		s.AllergiesVisible = *p.AllergiesVisible
	}
	if p.DoctorInfoVisible != nil {
		s.DoctorInfoVisible = *p.DoctorInfoVisible
	}
	if p.InsuranceVisible != nil {
		s.InsuranceVisible = *p.InsuranceVisible
	}
	if p.EmergencyContactVisible != nil {
		s.EmergencyContactVisible = *p.EmergencyContactVisible
	}
	if p.BodyMeasurementsVisible != nil {
		s.BodyMeasurementsVisible = *p.BodyMeasurementsVisible
	}
	if p.VitalSignsVisible != nil {
		s.VitalSignsVisible = *p.VitalSignsVisible
	}

	if p.AllowDataSharing != nil {
		s.AllowDataSharing = *p.AllowDataSharing
	}
	if p.ShareWithFriends != nil {
		s.ShareWithFriends = *p.ShareWithFriends
	}
}

// Summary is the condensed settings view for the owner
type Summary struct {
	CategoryLevels map[Category]Level `json:"category_levels"`
	VisibleFields  map[Field]bool     `json:"visible_fields"`
	AllowSharing   bool               `json:"allow_data_sharing"`
	ShareFriends   bool               `json:"share_with_friends"`
	UpdatedAt      string             `json:"updated_at,omitempty"`
}

// Summarize builds the owner-facing overview of a settings row
func Summarize(s *Settings) *Summary {
	summary := &Summary{
		CategoryLevels: make(map[Category]Level, len(Categories)),
		VisibleFields:  make(map[Field]bool, len(fieldCategories)),
		AllowSharing:   s.AllowDataSharing,
		ShareFriends:   s.ShareWithFriends,
	}
	for _, c := range Categories {
		summary.CategoryLevels[c] = s.CategoryLevel(c)
	}
	for f := range fieldCategories {
		summary.VisibleFields[f] = s.FieldVisible(f)
	}
	if !s.UpdatedAt.IsZero() {
		summary.UpdatedAt = s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return summary
}
