package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joshua-takyi/staybook/internal/cache"
	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/models"
	"github.com/joshua-takyi/staybook/internal/reports"
)

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardCacheTTL = 5 * time.Minute
	reportPageSize    = 500
	reportDateLayout  = "2006-01-02"
)

type AdminService struct {
	userRepo     models.UserRepo
	bookingRepo  models.BookingRepo
	propertyRepo models.PropertyRepo
	statsRepo    models.StatsRepo
	store        cache.Store
	clock        clock.Clock
	logger       *slog.Logger
	pageSize     int
}

func NewAdminService(userRepo models.UserRepo, bookingRepo models.BookingRepo, propertyRepo models.PropertyRepo, statsRepo models.StatsRepo, store cache.Store, clk clock.Clock, logger *slog.Logger) *AdminService {
	if store == nil {
		store = cache.Nop{}
	}
	return &AdminService{
		userRepo:     userRepo,
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		statsRepo:    statsRepo,
		store:        store,
		clock:        clk,
		logger:       logger,
		pageSize:     reportPageSize,
	}
}

// DashboardStats serves the overview from cache when possible. Cache failures only cost a recompute.
func (as *AdminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if cached, err := as.store.Get(ctx, dashboardCacheKey); err == nil {
		var stats models.DashboardStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		as.logger.Warn("dashboard cache read failed", "error", err)
	}

	stats, err := as.statsRepo.DashboardStats(ctx, as.clock.Now())
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(stats); err == nil {
		if err := as.store.Set(ctx, dashboardCacheKey, string(payload), dashboardCacheTTL); err != nil {
			as.logger.Warn("dashboard cache write failed", "error", err)
		}
	}
	return stats, nil
}

func validatePage(offset, limit int) error {
	if offset < 0 || limit <= 0 || limit > maxPageSize {
		return fmt.Errorf("%w: invalid offset or limit", models.ErrValidation)
	}
	return nil
}

func (as *AdminService) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	if err := validatePage(offset, limit); err != nil {
		return nil, 0, err
	}
	return as.userRepo.ListUsers(ctx, offset, limit)
}

func (as *AdminService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, int64, error) {
	if err := validatePage(filter.Offset, filter.Limit); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" {
		if err := models.Validate.Var(string(filter.Status), "oneof=pending confirmed cancelled completed"); err != nil {
			return nil, 0, fmt.Errorf("%w: unknown booking status", models.ErrValidation)
		}
	}
	return as.bookingRepo.ListBookings(ctx, filter)
}

func (as *AdminService) ListProperties(ctx context.Context, offset, limit int) ([]*models.Property, int64, error) {
	if err := validatePage(offset, limit); err != nil {
		return nil, 0, err
	}
	return as.propertyRepo.ListProperties(ctx, models.PropertyFilter{Offset: offset, Limit: limit})
}

func (as *AdminService) DeleteUser(ctx context.Context, id string, requester Requester) error {
	if id == requester.UserID {
		return fmt.Errorf("%w: admins cannot delete their own account", models.ErrValidation)
	}
	return as.userRepo.DeleteUser(ctx, id)
}

func (as *AdminService) SetUserRole(ctx context.Context, id, role string, requester Requester) (*models.User, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if err := models.Validate.Var(role, "required,oneof=user admin"); err != nil {
		return nil, fmt.Errorf("%w: role must be user or admin", models.ErrValidation)
	}
	if id == requester.UserID && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admins cannot demote themselves", models.ErrValidation)
	}
	return as.userRepo.UpdateUser(ctx, id, map[string]interface{}{"role": role})
}

// ExportReport renders one of the admin collections ("bookings", "users", "properties").
func (as *AdminService) ExportReport(ctx context.Context, resource string, format reports.Format) (*reports.File, error) {
	var (
		table reports.Table
		err   error
	)
	switch strings.ToLower(resource) {
	case "bookings":
		table, err = as.bookingsTable(ctx)
	case "users":
		table, err = as.usersTable(ctx)
	case "properties":
		table, err = as.propertiesTable(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown report %q", models.ErrValidation, resource)
	}
	if err != nil {
		return nil, err
	}

	file, err := reports.Render(table, format, as.clock.Now())
	if err != nil {
		if errors.Is(err, reports.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		return nil, err
	}
	return file, nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// collectAll reads a listing page by page until every row is in.
func collectAll[T any](ctx context.Context, pageSize int, list func(ctx context.Context, offset, limit int) ([]T, int64, error)) ([]T, error) {
	var all []T
	for offset := 0; ; offset += pageSize {
		rows, total, err := list(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
		if len(rows) < pageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func (as *AdminService) bookingsTable(ctx context.Context) (reports.Table, error) {
	bookings, err := collectAll(ctx, as.pageSize, func(ctx context.Context, offset, limit int) ([]*models.Booking, int64, error) {
		return as.bookingRepo.ListBookings(ctx, models.BookingFilter{Offset: offset, Limit: limit})
	})
	if err != nil {
		return reports.Table{}, err
	}
	table := reports.Table{
		Title:   "Bookings",
		Headers: []string{"ID", "Property", "Guest", "Check-in", "Check-out", "Guests", "Payment", "Total", "Status", "Created"},
	}
	for _, b := range bookings {
		table.Rows = append(table.Rows, []string{
			b.ID,
			b.PropertyID,
			b.UserID,
			b.CheckIn.Format(reportDateLayout),
			b.CheckOut.Format(reportDateLayout),
			strconv.Itoa(b.Guests),
			b.PaymentMethod,
			money(b.TotalAmount),
			string(b.Status),
			b.CreatedAt.Format(reportDateLayout),
		})
	}
	return table, nil
}

func (as *AdminService) usersTable(ctx context.Context) (reports.Table, error) {
	users, err := collectAll(ctx, as.pageSize, as.userRepo.ListUsers)
	if err != nil {
		return reports.Table{}, err
	}
	table := reports.Table{
		Title:   "Users",
		Headers: []string{"ID", "Name", "Email", "Phone", "Role", "Host", "Verified", "Created"},
	}
	for _, u := range users {
		table.Rows = append(table.Rows, []string{
			u.ID,
			u.Name,
			u.Email,
			u.Phone,
			u.Role,
			strconv.FormatBool(u.IsHost),
			strconv.FormatBool(u.IsVerified),
			u.CreatedAt.Format(reportDateLayout),
		})
	}
	return table, nil
}

func (as *AdminService) propertiesTable(ctx context.Context) (reports.Table, error) {
	properties, err := collectAll(ctx, as.pageSize, func(ctx context.Context, offset, limit int) ([]*models.Property, int64, error) {
		return as.propertyRepo.ListProperties(ctx, models.PropertyFilter{Offset: offset, Limit: limit})
	})
	if err != nil {
		return reports.Table{}, err
	}
	table := reports.Table{
		Title:   "Properties",
		Headers: []string{"ID", "Title", "Owner", "Type", "Location", "Price", "Max guests", "Rating", "Reviews"},
	}
	for _, p := range properties {
		table.Rows = append(table.Rows, []string{
			p.ID,
			p.Title,
			p.OwnerID,
			string(p.Type),
			p.Location,
			money(p.Price),
			strconv.Itoa(p.MaxGuests),
			strconv.FormatFloat(p.Rating, 'f', 1, 64),
			strconv.Itoa(p.ReviewCount),
		})
	}
	return table, nil
}
