// Package cron runs the periodic retention sweep over resolved access
// requests.
package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gmsas95/vitalbase/internal/privacy"
)

// Config holds retention runner configuration
type Config struct {
	CheckInterval     int // Minutes between sweeps
	DeniedRequestDays int // Age at which denied requests are pruned
}

// Runner prunes denied access requests past their retention window.
// Approved requests are never touched; they back standing disclosure
// grants.
type Runner struct {
	config   Config
	workflow *privacy.Workflow
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	mu       sync.RWMutex
}

// NewRunner creates a retention runner
func NewRunner(config Config, workflow *privacy.Workflow, logger *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())

	if config.CheckInterval <= 0 {
		config.CheckInterval = 60
	}
	if config.DeniedRequestDays <= 0 {
		config.DeniedRequestDays = 90
	}

	return &Runner{
		config:   config,
		workflow: workflow,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the retention runner
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("retention runner already running")
	}

	r.running = true
	r.wg.Add(1)
	go r.run()

	return nil
}

// Stop stops the retention runner
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	r.logger.Info("Retention runner stopped")
}

// IsRunning returns whether the runner is active
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

func (r *Runner) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(time.Duration(r.config.CheckInterval) * time.Minute)
	defer ticker.Stop()

	// Sweep immediately on start
	r.sweep()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Runner) sweep() {
	cutoff := time.Now().AddDate(0, 0, -r.config.DeniedRequestDays)

	pruned, err := r.workflow.PruneDenied(cutoff)
	if err != nil {
		r.logger.Error("Failed to prune denied requests", zap.Error(err))
		return
	}
	if pruned > 0 {
		r.logger.Info("Retention sweep complete",
			zap.Int64("pruned", pruned),
			zap.Time("cutoff", cutoff))
	}
}
