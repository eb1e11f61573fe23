package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joshua-takyi/staybook/internal/cache"
	"github.com/joshua-takyi/staybook/internal/models"
)

var errStoreDown = errors.New("store unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory stand-in for the Mongo repository. Like MongodbRepo it implements
// every repository interface.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	properties map[string]*models.Property
	bookings   map[string]*models.Booking
	reviews    map[string]*models.Review
	favourites []*models.Favourite
	locks      map[string]models.BookingLock

	completeErr error
	cleanupErr  error
	insertErr   error
	// reviewedErr and updateUserErr fail the next matching call once.
	reviewedErr   error
	updateUserErr error
	stats       *models.DashboardStats
	statsCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*models.User{},
		properties: map[string]*models.Property{},
		bookings:   map[string]*models.Booking{},
		reviews:    map[string]*models.Review{},
		locks:      map[string]models.BookingLock{},
	}
}

func (m *memStore) addProperty(p *models.Property) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[p.ID] = p
}

func (m *memStore) addBooking(b *models.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
}

func (m *memStore) addUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memStore) booking(id string) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.bookings[id]
}

func (m *memStore) property(id string) models.Property {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.properties[id]
}

// users

func (m *memStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Phone == user.Phone {
			return fmt.Errorf("%w: email or phone already registered", models.ErrConflict)
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) findUser(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: user not found", models.ErrNotFound)
}

func (m *memStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.ID == id })
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.Email == email })
}

func (m *memStore) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.ResetToken != "" && u.ResetToken == token })
}

func (m *memStore) UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.updateUserErr; err != nil {
		m.updateUserErr = nil
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", models.ErrNotFound)
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "role":
			u.Role = v.(string)
		case "is_host":
			u.IsHost = v.(bool)
		case "is_verified":
			u.IsVerified = v.(bool)
		case "password_hash":
			u.PasswordHash = v.(string)
		case "otp_code":
			u.OTPCode, _ = v.(string)
		case "otp_expires_at":
			u.OTPExpiresAt = timePtr(v)
		case "reset_token":
			u.ResetToken, _ = v.(string)
		case "reset_expires_at":
			u.ResetExpiresAt = timePtr(v)
		default:
			return nil, fmt.Errorf("unexpected user field %q", k)
		}
	}
	cp := *u
	return &cp, nil
}

func timePtr(v interface{}) *time.Time {
	t, ok := v.(time.Time)
	if !ok {
		return nil
	}
	return &t
}

func (m *memStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("%w: user not found", models.ErrNotFound)
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return page(users, offset, limit), int64(len(users)), nil
}

func (m *memStore) DeleteStaleUnverifiedUsers(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.cleanupErr != nil {
		return 0, m.cleanupErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, u := range m.users {
		if !u.IsVerified && !u.CreatedAt.After(cutoff) {
			delete(m.users, id)
			n++
		}
	}
	return n, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// properties

func (m *memStore) CreateProperty(ctx context.Context, property *models.Property) error {
	m.addProperty(property)
	return nil
}

func (m *memStore) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return nil, fmt.Errorf("%w: property not found", models.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListProperties(ctx context.Context, filter models.PropertyFilter) ([]*models.Property, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Property
	for _, p := range m.properties {
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.Guests > 0 && p.MaxGuests < filter.Guests {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, filter.Offset, filter.Limit), int64(len(out)), nil
}

func (m *memStore) UpdateProperty(ctx context.Context, id string, fields map[string]interface{}) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return nil, fmt.Errorf("%w: property not found", models.ErrNotFound)
	}
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "price":
			p.Price = v.(float64)
		case "max_guests":
			p.MaxGuests = v.(int)
		case "amenities":
			p.Amenities = v.([]string)
		case "location":
			p.Location = v.(string)
		}
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) DeleteProperty(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.properties[id]; !ok {
		return fmt.Errorf("%w: property not found", models.ErrNotFound)
	}
	delete(m.properties, id)
	return nil
}

func (m *memStore) AppendPropertyImages(ctx context.Context, id string, urls []string) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return nil, fmt.Errorf("%w: property not found", models.ErrNotFound)
	}
	p.Images = append(p.Images, urls...)
	cp := *p
	return &cp, nil
}

func (m *memStore) UpdatePropertyRating(ctx context.Context, id string, rating float64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return fmt.Errorf("%w: property not found", models.ErrNotFound)
	}
	p.Rating = rating
	p.ReviewCount = count
	return nil
}

// bookings

func (m *memStore) InsertBooking(ctx context.Context, booking *models.Booking) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	cp := *booking
	m.addBooking(&cp)
	return nil
}

func (m *memStore) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking not found", models.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) filterBookings(match func(*models.Booking) bool) []*models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range m.bookings {
		if match(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out
}

func (m *memStore) FindOverlappingBookings(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]*models.Booking, error) {
	return m.filterBookings(func(b *models.Booking) bool {
		return b.PropertyID == propertyID && b.BlocksDates() && b.Overlaps(checkIn, checkOut)
	}), nil
}

func (m *memStore) ListBookingsByProperty(ctx context.Context, propertyID string) ([]*models.Booking, error) {
	return m.filterBookings(func(b *models.Booking) bool { return b.PropertyID == propertyID }), nil
}

func (m *memStore) ListBookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	return m.filterBookings(func(b *models.Booking) bool { return b.UserID == userID }), nil
}

func (m *memStore) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, int64, error) {
	out := m.filterBookings(func(b *models.Booking) bool {
		return filter.Status == "" || b.Status == filter.Status
	})
	return page(out, filter.Offset, filter.Limit), int64(len(out)), nil
}

func (m *memStore) TransitionBookingStatus(ctx context.Context, id string, from, to models.BookingStatus, now time.Time) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return nil, fmt.Errorf("%w: booking is no longer %s", models.ErrConflict, from)
	}
	b.Status = to
	b.UpdatedAt = now
	cp := *b
	return &cp, nil
}

func (m *memStore) FindCompletedBooking(ctx context.Context, id, userID, propertyID string) (*models.Booking, error) {
	found := m.filterBookings(func(b *models.Booking) bool {
		return b.ID == id && b.UserID == userID && b.PropertyID == propertyID && b.Status == models.BookingCompleted
	})
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: no completed booking found for this review", models.ErrNotFound)
	}
	return found[0], nil
}

func (m *memStore) SetBookingReviewed(ctx context.Context, id string, reviewed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.reviewedErr; err != nil {
		m.reviewedErr = nil
		return err
	}
	b, ok := m.bookings[id]
	if !ok {
		return fmt.Errorf("%w: booking not found", models.ErrNotFound)
	}
	b.Reviewed = reviewed
	return nil
}

func (m *memStore) CountUpcomingBookings(ctx context.Context, propertyID string, now time.Time) (int64, error) {
	return int64(len(m.filterBookings(func(b *models.Booking) bool {
		return b.PropertyID == propertyID && b.Status == models.BookingConfirmed && b.CheckOut.After(now)
	}))), nil
}

func (m *memStore) CompleteElapsedBookings(ctx context.Context, now time.Time) (int64, error) {
	if m.completeErr != nil {
		return 0, m.completeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bookings {
		if b.Status == models.BookingConfirmed && b.CheckOut.Before(now) {
			b.Status = models.BookingCompleted
			b.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// locks

func (m *memStore) AcquirePropertyLock(ctx context.Context, propertyID, owner string, now time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[propertyID]; ok && l.ExpiresAt.After(now) {
		return models.ErrLockHeld
	}
	m.locks[propertyID] = models.BookingLock{ID: propertyID, Owner: owner, ExpiresAt: now.Add(ttl), CreatedAt: now}
	return nil
}

func (m *memStore) ReleasePropertyLock(ctx context.Context, propertyID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[propertyID]; ok && l.Owner == owner {
		delete(m.locks, propertyID)
	}
	return nil
}

// reviews

func (m *memStore) InsertReview(ctx context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.BookingID == review.BookingID {
			return fmt.Errorf("%w: booking has already been reviewed", models.ErrConflict)
		}
	}
	cp := *review
	m.reviews[review.ID] = &cp
	return nil
}

func (m *memStore) GetReviewByID(ctx context.Context, id string) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review not found", models.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ReviewExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) DeleteReview(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return fmt.Errorf("%w: review not found", models.ErrNotFound)
	}
	delete(m.reviews, id)
	return nil
}

func (m *memStore) ListReviewsByProperty(ctx context.Context, propertyID string) ([]*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Review{}
	for _, r := range m.reviews {
		if r.PropertyID == propertyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) PropertyRatingSummary(ctx context.Context, propertyID string) (models.RatingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum, count int
	for _, r := range m.reviews {
		if r.PropertyID == propertyID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return models.RatingSummary{}, nil
	}
	return models.RatingSummary{Average: float64(sum) / float64(count), Count: count}, nil
}

// favourites

func (m *memStore) AddToFavourites(ctx context.Context, fav *models.Favourite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.favourites {
		if f.UserID == fav.UserID && f.PropertyID == fav.PropertyID {
			return fmt.Errorf("%w: property already in favourites", models.ErrConflict)
		}
	}
	m.favourites = append(m.favourites, fav)
	return nil
}

func (m *memStore) RemoveFromFavourites(ctx context.Context, userID, propertyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.favourites {
		if f.UserID == userID && f.PropertyID == propertyID {
			m.favourites = append(m.favourites[:i], m.favourites[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: favourite not found", models.ErrNotFound)
}

func (m *memStore) GetFavouritesByUserID(ctx context.Context, userID string) ([]*models.Favourite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Favourite{}
	for _, f := range m.favourites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

// stats

func (m *memStore) DashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	m.statsCalls++
	if m.stats == nil {
		return &models.DashboardStats{GeneratedAt: now, BookingsByStatus: map[string]int64{}}, nil
	}
	return m.stats, nil
}

// fakeMailer records every message.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	To, Subject, Body string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: html})
	return f.err
}

func (f *fakeMailer) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}
	}
	return f.sent[len(f.sent)-1]
}

// memCache is a TTL-less cache.Store.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}}
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = value
	return true, nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fakeUploader struct {
	urls []string
}

func (f *fakeUploader) UploadImages(ctx context.Context, folder string, files []io.Reader) ([]string, error) {
	out := make([]string, len(files))
	for i := range files {
		out[i] = fmt.Sprintf("https://img.example/%s/%d.jpg", folder, i)
	}
	f.urls = append(f.urls, out...)
	return out, nil
}
