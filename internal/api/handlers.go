package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/gmsas95/vitalbase/internal/errors"
	"github.com/gmsas95/vitalbase/internal/health"
	"github.com/gmsas95/vitalbase/internal/privacy"
)

// ==================== Auth ====================

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.InvalidInput("invalid request body"))
	}
	if req.UserID == "" {
		return fail(c, errors.InvalidInput("user_id is required"))
	}

	if _, err := s.store.EnsureUser(req.UserID, req.DisplayName); err != nil {
		s.logger.Error("Failed to ensure user", zap.Error(err))
		return fail(c, err)
	}

	ttl := time.Duration(s.config.Security.TokenTTLHours) * time.Hour
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": req.UserID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.Security.JWTSecret))
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return fail(c, errors.ErrInternal)
	}

	return c.JSON(fiber.Map{"token": tokenString, "user_id": req.UserID})
}

// ==================== Profile ====================

func (s *Server) handleSaveProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.InvalidInput("invalid request body"))
	}

	profile, err := s.health.SaveProfile(req.toProfile(currentUserID(c)))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	profile, err := s.health.GetProfile(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if profile == nil {
		return fail(c, errors.ErrProfileNotFound)
	}
	return c.JSON(profile)
}

// ==================== Measurements ====================

func (s *Server) handleCreateMeasurement(c *fiber.Ctx) error {
	var req measurementRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.InvalidInput("invalid request body"))
	}

	m := &health.BodyMeasurement{
		UserID:            currentUserID(c),
		WeightKg:          req.WeightKg,
		BodyFatPercentage: req.BodyFatPercentage,
		Notes:             req.Notes,
	}
	if req.MeasurementDate != nil {
		m.MeasurementDate = *req.MeasurementDate
	}

	if err := s.health.CreateMeasurement(m); err != nil {
		return fail(c, err)
	}
	s.metrics.RecordMeasurement()
	return c.Status(201).JSON(m)
}

func (s *Server) handleListMeasurements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	ms, err := s.health.ListMeasurements(currentUserID(c), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ms)
}

func (s *Server) handleGetMeasurement(c *fiber.Ctx) error {
	m, err := s.health.GetMeasurement(currentUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(m)
}

func (s *Server) handleUpdateMeasurement(c *fiber.Ctx) error {
	var req measurementRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.InvalidInput("invalid request body"))
	}

	m, err := s.health.GetMeasurement(currentUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	m.WeightKg = req.WeightKg
	m.BodyFatPercentage = req.BodyFatPercentage
	m.Notes = req.Notes
	if req.MeasurementDate != nil {
		m.MeasurementDate = *req.MeasurementDate
	}

	if err := s.health.UpdateMeasurement(m); err != nil {
		return fail(c, err)
	}
	return c.JSON(m)
}

func (s *Server) handleDeleteMeasurement(c *fiber.Ctx) error {
	if err := s.health.DeleteMeasurement(currentUserID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(204)
}

// ==================== Vitals ====================

func (s *Server) handleCreateVital(c *fiber.Ctx) error {
	var req vitalRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.InvalidInput("invalid request body"))
	}

	v := &health.VitalSign{
		UserID:             currentUserID(c),
		TemperatureCelsius: req.TemperatureCelsius,
		SystolicBP:         req.SystolicBP,
		DiastolicBP:        req.DiastolicBP,
		HeartRate:          req.HeartRate,
		Notes:              req.Notes,
	}
	if req.RecordedAt != nil {
		v.RecordedAt = *req.RecordedAt
	}

	if err := s.health.CreateVital(v); err != nil {
		return fail(c, err)
	}
	s.metrics.RecordVital()
	return c.Status(201).JSON(v)
}

func (s *Server) handleListVitals(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	vs, err := s.health.ListVitals(currentUserID(c), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(vs)
}

func (s *Server) handleGetVital(c *fiber.Ctx) error {
	v, err := s.health.GetVital(currentUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(v)
}

func (s *Server) handleUpdateVital(c *fiber.Ctx) error {
	var req vitalRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.InvalidInput("invalid request body"))
	}

	v, err := s.health.GetVital(currentUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	v.TemperatureCelsius = req.TemperatureCelsius
	v.SystolicBP = req.SystolicBP
	v.DiastolicBP = req.DiastolicBP
	v.HeartRate = req.HeartRate
	v.Notes = req.Notes
	if req.RecordedAt != nil {
		v.RecordedAt = *req.RecordedAt
	}

	if err := s.health.UpdateVital(v); err != nil {
		return fail(c, err)
	}
	return c.JSON(v)
}

func (s *Server) handleDeleteVital(c *fiber.Ctx) error {
	if err := s.health.DeleteVital(currentUserID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(204)
}

// ==================== Derived Views ====================

func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	userID := currentUserID(c)

	profile, err := s.health.GetProfile(userID)
	if err != nil {
		return fail(c, err)
	}
	latest, err := s.health.LatestMeasurement(userID)
	if err != nil {
		return fail(c, err)
	}

	snap, err := s.builder.Build(profile, latest, time.Now())
	if err != nil {
		s.metrics.RecordSnapshot(false)
		return fail(c, err)
	}
	s.metrics.RecordSnapshot(true)
	return c.JSON(snap)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.health.Stats(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// ==================== Privacy Settings ====================

func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	settings, err := s.settings.Get(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(settings)
}

func (s *Server) handleUpdateSettings(c *fiber.Ctx) error {
	var patch privacy.SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return fail(c, errors.InvalidInput("invalid request body"))
	}

	settings, err := s.settings.Update(currentUserID(c), &patch)
	if err != nil {
		return fail(c, err)
	}
	s.metrics.RecordSettingsUpdate()
	return c.JSON(settings)
}

func (s *Server) handleResetSettings(c *fiber.Ctx) error {
	settings, err := s.settings.Reset(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	s.metrics.RecordSettingsReset()
	return c.JSON(settings)
}

func (s *Server) handlePrivacySummary(c *fiber.Ctx) error {
	settings, err := s.settings.Get(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(privacy.Summarize(settings))
}

// ==================== Access Requests ====================

func (s *Server) handleCreateRequest(c *fiber.Ctx) error {
	var req accessRequestCreate
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.InvalidInput("invalid request body"))
	}

	created, err := s.workflow.Create(currentUserID(c), req.TargetUserID, req.Categories, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	s.metrics.RecordAccessRequestCreated()
	return c.Status(201).JSON(created)
}

func (s *Server) handleListRequests(c *fiber.Ctx) error {
	reqs, err := s.workflow.ListForUser(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(reqs)
}

func (s *Server) handleRespondRequest(c *fiber.Ctx) error {
	var req accessRequestRespond
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.InvalidInput("invalid request body"))
	}

	resolved, err := s.workflow.Respond(c.Params("id"), currentUserID(c), req.Status, req.Note)
	if err != nil {
		return fail(c, err)
	}
	s.metrics.RecordAccessRequestResolved(resolved.Status == privacy.StatusApproved)
	return c.JSON(resolved)
}

// ==================== Disclosure ====================

func (s *Server) handleViewUser(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	targetID := c.Params("id")

	profile, err := s.health.GetProfile(targetID)
	if err != nil {
		return fail(c, err)
	}
	if profile == nil {
		return fail(c, errors.ErrProfileNotFound)
	}

	latest, err := s.health.LatestMeasurement(targetID)
	if err != nil {
		return fail(c, err)
	}
	vitals, err := s.health.ListVitals(targetID, 1, 0)
	if err != nil {
		return fail(c, err)
	}
	var vital *health.VitalSign
	if len(vitals) > 0 {
		vital = &vitals[0]
	}

	settings, err := s.settings.Get(targetID)
	if err != nil {
		return fail(c, err)
	}
	approved, err := s.workflow.ApprovedFor(viewerID, targetID)
	if err != nil {
		return fail(c, err)
	}

	for _, category := range privacy.Categories {
		decision := privacy.View(viewerID, targetID, settings, approved, category)
		s.metrics.RecordDisclosureCheck(decision == privacy.Hidden)
	}

	view := privacy.FilterProfile(viewerID, profile, latest, vital, settings, approved)
	return c.JSON(view)
}
