package privacy

import (
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gmsas95/vitalbase/internal/errors"
)

const maxReasonLength = 500

// Workflow drives access requests through their pending to
// approved/denied transition. Respond holds a mutex across the
// load-check-save so racing responders get exactly one winner.
type Workflow struct {
	db     *gorm.DB
	logger *zap.Logger

	respondMu sync.Mutex
}

// NewWorkflow creates the workflow and runs its migration
func NewWorkflow(db *gorm.DB, logger *zap.Logger) (*Workflow, error) {
	if err := db.AutoMigrate(&AccessRequest{}); err != nil {
		return nil, err
	}
	return &Workflow{db: db, logger: logger}, nil
}

// Create opens a pending request from requester to target
func (w *Workflow) Create(requester, target string, categories []Category, reason string) (*AccessRequest, error) {
	if requester == "" || target == "" {
		return nil, errors.InvalidInput("requester and target are required")
	}
	if requester == target {
		return nil, errors.InvalidInput("cannot request access to your own data")
	}
	if len(categories) == 0 {
		return nil, errors.InvalidInput("requested_categories must not be empty")
	}
	for _, c := range categories {
		if !c.Valid() {
			return nil, errors.InvalidInput("unknown category: " + string(c))
		}
	}
	if len(reason) > maxReasonLength {
		return nil, errors.InvalidInput("reason exceeds 500 characters")
	}

	req := &AccessRequest{
		RequesterUserID: requester,
		TargetUserID:    target,
		Categories:      dedupe(categories),
		Reason:          strings.TrimSpace(reason),
		Status:          StatusPending,
	}
	if err := w.db.Create(req).Error; err != nil {
		return nil, err
	}

	w.logger.Info("access request created",
		zap.String("request_id", req.ID),
		zap.String("requester", requester),
		zap.String("target", target))
	return req, nil
}

// Respond transitions a pending request to approved or denied. The
// transition is terminal; a second respond observes the resolved state
// and fails.
func (w *Workflow) Respond(requestID, targetUserID string, status RequestStatus, note string) (*AccessRequest, error) {
	if status != StatusApproved && status != StatusDenied {
		return nil, errors.InvalidInput("status must be approved or denied")
	}

	w.respondMu.Lock()
	defer w.respondMu.Unlock()

	var req AccessRequest
	if err := w.db.First(&req, "id = ?", requestID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRequestNotFound
		}
		return nil, err
	}

	if req.TargetUserID != targetUserID {
		return nil, errors.ErrForbidden
	}
	if req.Status != StatusPending {
		return nil, errors.ErrRequestResolved
	}

	now := time.Now()
	req.Status = status
	req.ResponseNote = note
	req.RespondedAt = &now

	if err := w.db.Save(&req).Error; err != nil {
		return nil, err
	}

	w.logger.Info("access request resolved",
		zap.String("request_id", req.ID),
		zap.String("status", string(status)))
	return &req, nil
}

// Get retrieves one request by ID
func (w *Workflow) Get(requestID string) (*AccessRequest, error) {
	var req AccessRequest
	if err := w.db.First(&req, "id = ?", requestID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ListForUser returns every request where the user is requester or
// target, most recent first
func (w *Workflow) ListForUser(userID string) ([]AccessRequest, error) {
	var reqs []AccessRequest
	err := w.db.Where("requester_user_id = ? OR target_user_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, err
}

// ApprovedFor returns the approved requests from viewer to target.
// Approval has no expiry; once granted it stays until superseded.
func (w *Workflow) ApprovedFor(viewerID, targetID string) ([]AccessRequest, error) {
	var reqs []AccessRequest
	err := w.db.Where("requester_user_id = ? AND target_user_id = ? AND status = ?",
		viewerID, targetID, StatusApproved).
		Find(&reqs).Error
	return reqs, err
}

// PruneDenied removes denied requests resolved before the cutoff and
// returns how many rows went away. Approved requests are never pruned;
// they back standing disclosure grants.
func (w *Workflow) PruneDenied(before time.Time) (int64, error) {
	res := w.db.Where("status = ? AND responded_at < ?", StatusDenied, before).
		Delete(&AccessRequest{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		w.logger.Info("pruned denied access requests", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func dedupe(categories []Category) []Category {
	seen := make(map[Category]bool, len(categories))
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
