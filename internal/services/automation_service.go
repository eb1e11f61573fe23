package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/metrics"
	"github.com/joshua-takyi/staybook/internal/models"
)

const DefaultUnverifiedGrace = 5 * time.Minute

type SweepResult struct {
	RanAt             time.Time `json:"ran_at"`
	CompletedBookings int64     `json:"completed_bookings"`
	DeletedUsers      int64     `json:"deleted_users"`
	Failures          []string  `json:"failures,omitempty"`
}

// AutomationService runs the periodic maintenance passes. It holds no schedule of its own.
type AutomationService struct {
	bookingRepo models.BookingRepo
	userRepo    models.UserRepo
	clock       clock.Clock
	grace       time.Duration
	logger      *slog.Logger
}

func NewAutomationService(bookingRepo models.BookingRepo, userRepo models.UserRepo, clk clock.Clock, grace time.Duration, logger *slog.Logger) *AutomationService {
	if grace <= 0 {
		grace = DefaultUnverifiedGrace
	}
	return &AutomationService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		clock:       clk,
		grace:       grace,
		logger:      logger,
	}
}

// RunSweep completes elapsed bookings and deletes stale unverified accounts.
// A failing pass is logged and reported in the result; it never prevents the other pass from running.
func (as *AutomationService) RunSweep(ctx context.Context) SweepResult {
	now := as.clock.Now()
	result := SweepResult{RanAt: now}

	completed, err := as.bookingRepo.CompleteElapsedBookings(ctx, now)
	metrics.ObserveSweepPass("complete_bookings", completed, err)
	if err != nil {
		as.logger.Error("booking completion pass failed", "error", err)
		result.Failures = append(result.Failures, "complete_bookings")
	} else {
		result.CompletedBookings = completed
	}

	deleted, err := as.userRepo.DeleteStaleUnverifiedUsers(ctx, now.Add(-as.grace))
	metrics.ObserveSweepPass("cleanup_users", deleted, err)
	if err != nil {
		as.logger.Error("unverified user cleanup pass failed", "error", err)
		result.Failures = append(result.Failures, "cleanup_users")
	} else {
		result.DeletedUsers = deleted
	}

	metrics.SetSweepLastRun(now)
	as.logger.Info("sweep finished",
		"completed_bookings", result.CompletedBookings,
		"deleted_users", result.DeletedUsers,
		"failures", len(result.Failures),
	)
	return result
}
