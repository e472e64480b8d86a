package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/matching"
	"service-marketplace/internal/realtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memStore backs every repository with maps guarded by one mutex.
type memStore struct {
	mu sync.Mutex

	users         map[uuid.UUID]*entity.User
	sessions      map[string]*entity.Session
	providers     map[uuid.UUID]*entity.Provider
	providerOrder []uuid.UUID
	categories    []*entity.ServiceCategory
	services      map[uuid.UUID]*entity.Service
	areas         map[uuid.UUID]*entity.ServiceArea
	areaOrder     []uuid.UUID
	plans         map[uuid.UUID]*entity.SubscriptionPlan
	subscriptions []*entity.Subscription
	payments      map[uuid.UUID]*entity.Payment
	bookings      map[uuid.UUID]*entity.Booking
	messages      map[uuid.UUID]*entity.Message
	notifications []*entity.Notification
	reviews       map[uuid.UUID]*entity.Review

	failBookingCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[uuid.UUID]*entity.User),
		sessions:  make(map[string]*entity.Session),
		providers: make(map[uuid.UUID]*entity.Provider),
		services:  make(map[uuid.UUID]*entity.Service),
		areas:     make(map[uuid.UUID]*entity.ServiceArea),
		plans:     make(map[uuid.UUID]*entity.SubscriptionPlan),
		payments:  make(map[uuid.UUID]*entity.Payment),
		bookings:  make(map[uuid.UUID]*entity.Booking),
		messages:  make(map[uuid.UUID]*entity.Message),
		reviews:   make(map[uuid.UUID]*entity.Review),
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:         memUsers{m},
		Session:      memSessions{m},
		Provider:     memProviders{m},
		Catalog:      memCatalog{m},
		Subscription: memSubscriptions{m},
		Payment:      memPayments{m},
		Booking:      memBookings{m},
		Message:      memMessages{m},
		Notification: memNotifications{m},
		Review:       memReviews{m},
	}
}

// ==================== SEED HELPERS ====================

func (m *memStore) addUser(name string) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: time.Now()},
		FullName: name,
		Email:    name + "@example.com",
		Role:     entity.RoleCustomer,
		IsActive: true,
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addArea(city, name string) *entity.ServiceArea {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &entity.ServiceArea{ID: uuid.New(), AreaName: name, CityName: city}
	m.areas[a.ID] = a
	m.areaOrder = append(m.areaOrder, a.ID)
	return a
}

func (m *memStore) addService(name string, price, hours float64) *entity.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &entity.Service{ID: uuid.New(), CategoryID: uuid.New(), Name: name, BasePrice: price, EstimatedHours: hours}
	m.services[s.ID] = s
	return s
}

// addProvider makes an active, subscribed provider working 08:00-20:00 every day.
func (m *memStore) addProvider(name string, areas []*entity.ServiceArea, services []*entity.Service) *entity.Provider {
	u := m.addUser(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	u.Role = entity.RoleServiceProvider
	p := &entity.Provider{
		UserID:   u.ID,
		FullName: u.FullName,
		IsActive: true,
		Subscriptions: []entity.Subscription{{
			ProviderID: u.ID,
			StartDate:  time.Now().AddDate(0, -1, 0),
			EndDate:    time.Now().AddDate(0, 1, 0),
		}},
	}
	for _, a := range areas {
		p.AreaIDs = append(p.AreaIDs, a.ID)
	}
	for _, s := range services {
		p.ServiceIDs = append(p.ServiceIDs, s.ID)
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		p.Schedules = append(p.Schedules, entity.ScheduleSlot{
			ID:         uuid.New(),
			ProviderID: u.ID,
			DayOfWeek:  d,
			StartTime:  entity.NewTimeOfDay(8, 0),
			EndTime:    entity.NewTimeOfDay(20, 0),
		})
	}
	m.providers[u.ID] = p
	m.providerOrder = append(m.providerOrder, u.ID)
	return p
}

func (m *memStore) booking(id uuid.UUID) entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.bookings[id]
}

func (m *memStore) notificationsFor(userID uuid.UUID) []*entity.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// ==================== USERS & SESSIONS ====================

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Phone != nil && *u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) Update(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, u := range r.m.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

type memSessions struct{ m *memStore }

func (r memSessions) Create(_ context.Context, s *entity.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *s
	r.m.sessions[s.Token.String()] = &cp
	return nil
}

func (r memSessions) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[token]
	if !ok || !s.Active(time.Now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r memSessions) Revoke(_ context.Context, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrStaleWrite
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (r memSessions) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := time.Now()
	for _, s := range r.m.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r memSessions) RevokeOtherSessions(_ context.Context, userID uuid.UUID, keepToken string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := time.Now()
	var n int64
	for token, s := range r.m.sessions {
		if s.UserID == userID && s.RevokedAt == nil && token != keepToken {
			s.RevokedAt = &now
			n++
		}
	}
	return n, nil
}

func (r memSessions) CleanExpiredSessions(context.Context) error { return nil }

// ==================== PROVIDERS & CATALOG ====================

type memProviders struct{ m *memStore }

func (r memProviders) Create(_ context.Context, p *entity.Provider) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.providers[p.UserID]; ok {
		return repository.ErrDuplicate
	}
	cp := *p
	r.m.providers[p.UserID] = &cp
	r.m.providerOrder = append(r.m.providerOrder, p.UserID)
	if u, ok := r.m.users[p.UserID]; ok {
		u.Role = entity.RoleServiceProvider
	}
	return nil
}

func (r memProviders) Update(_ context.Context, p *entity.Provider) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *p
	r.m.providers[p.UserID] = &cp
	return nil
}

func (r memProviders) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Provider, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.providers[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memProviders) ListCandidatesByArea(_ context.Context, areaID uuid.UUID) ([]*entity.Provider, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Provider
	for _, id := range r.m.providerOrder {
		p := r.m.providers[id]
		if p.CoversArea(areaID) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memCatalog struct{ m *memStore }

func (r memCatalog) ListCategories(context.Context) ([]*entity.ServiceCategory, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]*entity.ServiceCategory(nil), r.m.categories...), nil
}

func (r memCatalog) ListServices(_ context.Context, categoryID *uuid.UUID) ([]*entity.Service, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Service
	for _, s := range r.m.services {
		if categoryID == nil || s.CategoryID == *categoryID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCatalog) FindServicesByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Service, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Service
	for _, id := range ids {
		if s, ok := r.m.services[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memCatalog) ListAreas(context.Context) ([]*entity.ServiceArea, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*entity.ServiceArea, 0, len(r.m.areaOrder))
	for _, id := range r.m.areaOrder {
		out = append(out, r.m.areas[id])
	}
	return out, nil
}

func (r memCatalog) FindAreaByID(_ context.Context, id uuid.UUID) (*entity.ServiceArea, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.areas[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (r memCatalog) FindAreasByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.ServiceArea, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.ServiceArea
	for _, id := range ids {
		if a, ok := r.m.areas[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type memSubscriptions struct{ m *memStore }

func (r memSubscriptions) ListPlans(context.Context) ([]*entity.SubscriptionPlan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.SubscriptionPlan
	for _, p := range r.m.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (r memSubscriptions) FindPlanByID(_ context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.plans[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r memSubscriptions) FindLatest(_ context.Context, providerID uuid.UUID) (*entity.Subscription, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var latest *entity.Subscription
	for _, s := range r.m.subscriptions {
		if s.ProviderID == providerID && (latest == nil || s.EndDate.After(latest.EndDate)) {
			latest = s
		}
	}
	return latest, nil
}

func (r memSubscriptions) Create(_ context.Context, sub *entity.Subscription) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.insertSubscription(sub)
	return nil
}

func (m *memStore) insertSubscription(sub *entity.Subscription) {
	cp := *sub
	m.subscriptions = append(m.subscriptions, &cp)
	if p, ok := m.providers[sub.ProviderID]; ok {
		p.Subscriptions = append(p.Subscriptions, cp)
	}
}

// ==================== PAYMENTS ====================

type memPayments struct{ m *memStore }

func (r memPayments) Create(_ context.Context, payment *entity.Payment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *payment
	r.m.payments[payment.ID] = &cp
	return nil
}

func (r memPayments) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memPayments) Complete(_ context.Context, paymentID uuid.UUID, transactionID string, paidAt time.Time, sub *entity.Subscription) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.payments[paymentID]
	if !ok || p.Status != entity.PaymentStatusPending {
		return repository.ErrStaleWrite
	}
	p.Status = entity.PaymentStatusCompleted
	p.TransactionID = &transactionID
	p.PaidAt = &paidAt
	r.m.insertSubscription(sub)
	return nil
}

func (r memPayments) Fail(_ context.Context, paymentID uuid.UUID, transactionID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.payments[paymentID]
	if !ok || p.Status != entity.PaymentStatusPending {
		return repository.ErrStaleWrite
	}
	p.Status = entity.PaymentStatusFailed
	p.TransactionID = &transactionID
	return nil
}

// ==================== BOOKINGS ====================

type memBookings struct{ m *memStore }

func (r memBookings) Create(_ context.Context, b *entity.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failBookingCreate {
		return errors.New("insert failed")
	}
	// TIMESTAMPTZ keeps the instant only
	cp := *b
	cp.ScheduledDate = cp.ScheduledDate.UTC()
	r.m.bookings[b.ID] = &cp
	return nil
}

func (r memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r memBookings) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]*entity.Booking, error) {
	return r.list(func(b *entity.Booking) bool { return b.CustomerID == customerID }), nil
}

func (r memBookings) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*entity.Booking, error) {
	return r.list(func(b *entity.Booking) bool { return b.ServiceProviderID == providerID }), nil
}

func (r memBookings) list(keep func(*entity.Booking) bool) []*entity.Booking {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.m.bookings {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memBookings) Transition(_ context.Context, t repository.BookingTransition) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[t.BookingID]
	if !ok || b.Status != t.FromStatus || b.Version != t.FromVersion {
		return repository.ErrStaleWrite
	}
	b.Status = t.ToStatus
	b.ServiceProviderID = t.ProviderID
	b.Version++
	b.UpdatedAt = t.At
	return nil
}

// ==================== CHAT, NOTIFICATIONS, REVIEWS ====================

type memMessages struct{ m *memStore }

func (r memMessages) Create(_ context.Context, msg *entity.Message) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *msg
	r.m.messages[msg.ID] = &cp
	return nil
}

func (r memMessages) FindByID(_ context.Context, id uuid.UUID) (*entity.Message, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	msg, ok := r.m.messages[id]
	if !ok {
		return nil, nil
	}
	cp := *msg
	return &cp, nil
}

func (r memMessages) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]*entity.Message, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Message
	for _, msg := range r.m.messages {
		if msg.BookingID == bookingID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memMessages) MarkBookingRead(_ context.Context, bookingID, receiverID uuid.UUID, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, msg := range r.m.messages {
		if msg.BookingID == bookingID && msg.ReceiverID == receiverID && !msg.IsRead {
			msg.IsRead = true
			msg.ReadAt = &at
		}
	}
	return nil
}

func (r memMessages) MarkRead(_ context.Context, id uuid.UUID, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	msg, ok := r.m.messages[id]
	if !ok || msg.IsRead {
		return repository.ErrStaleWrite
	}
	msg.IsRead = true
	msg.ReadAt = &at
	return nil
}

func (r memMessages) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.messages, id)
	return nil
}

func (r memMessages) ListConversations(_ context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	byBooking := make(map[uuid.UUID]*entity.Conversation)
	for _, msg := range r.m.messages {
		b := r.m.bookings[msg.BookingID]
		if b == nil || (b.CustomerID != userID && b.ServiceProviderID != userID) {
			continue
		}
		c, ok := byBooking[b.ID]
		if !ok {
			other := b.CustomerID
			if other == userID {
				other = b.ServiceProviderID
			}
			c = &entity.Conversation{BookingID: b.ID, OtherUserID: other, BookingStatus: b.Status}
			if u := r.m.users[other]; u != nil {
				c.OtherUserName = u.FullName
			}
			byBooking[b.ID] = c
		}
		if c.LastMessage == nil || msg.CreatedAt.After(c.LastMessage.CreatedAt) {
			cp := *msg
			c.LastMessage = &cp
			c.LastActivityAt = msg.CreatedAt
		}
		if msg.ReceiverID == userID && !msg.IsRead {
			c.UnreadCount++
		}
	}
	var out []*entity.Conversation
	for _, c := range byBooking {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	return out, nil
}

type memNotifications struct{ m *memStore }

func (r memNotifications) Create(_ context.Context, n *entity.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *n
	r.m.notifications = append(r.m.notifications, &cp)
	return nil
}

func (r memNotifications) ListByUser(_ context.Context, userID uuid.UUID) ([]*entity.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Notification
	for i := len(r.m.notifications) - 1; i >= 0; i-- {
		if n := r.m.notifications[i]; n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, n := range r.m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

type memReviews struct{ m *memStore }

func (r memReviews) Create(_ context.Context, review *entity.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.reviews[review.BookingID]; ok {
		return repository.ErrDuplicate
	}
	cp := *review
	r.m.reviews[review.BookingID] = &cp
	if p, ok := r.m.providers[review.ProviderID]; ok {
		p.Rating, p.TotalReviews = entity.NextRating(p.Rating, p.TotalReviews, review.Rating)
	}
	return nil
}

func (r memReviews) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Review, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	review, ok := r.m.reviews[bookingID]
	if !ok {
		return nil, nil
	}
	cp := *review
	return &cp, nil
}

func (r memReviews) ListByProvider(_ context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Review
	for _, review := range r.m.reviews {
		if review.ProviderID == providerID {
			out = append(out, review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ==================== INFRA FAKES ====================

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(ev realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) named(name string) []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []realtime.Event
	for _, ev := range p.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

type memFiles struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	failOn  string
}

func newMemFiles() *memFiles {
	return &memFiles{files: make(map[string][]byte)}
}

func (f *memFiles) Store(_ context.Context, folder, name string, r io.Reader) (string, error) {
	if name == f.failOn {
		return "", errors.New("upload failed")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := uuid.NewString()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[folder+"/"+ref] = data
	return ref, nil
}

func (f *memFiles) Delete(_ context.Context, folder, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, folder+"/"+ref)
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *memFiles) PublicURL(folder, ref string) string {
	return "/uploads/" + folder + "/" + ref
}

func (f *memFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

// ==================== FIXTURE ====================

type fixture struct {
	store     *memStore
	repo      *repository.Repository
	publisher *recordingPublisher
	files     *memFiles
	notifier  NotificationService
	booking   BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	repo := store.repository()
	publisher := &recordingPublisher{}
	files := newMemFiles()
	log := zap.NewNop()

	notifier := NewNotificationService(repo, publisher, log)
	matcher := matching.NewMatcher(matching.NewFinder(repo.Provider, repo.Catalog, log), matching.FirstSelector{}, time.Second)

	return &fixture{
		store:     store,
		repo:      repo,
		publisher: publisher,
		files:     files,
		notifier:  notifier,
		booking:   NewBookingService(repo, matcher, files, notifier, log),
	}
}

// upcoming returns 10:00 UTC two days from now, inside every seeded schedule.
func upcoming() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 2)
	return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, time.UTC)
}

func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)
}
