package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubSessions struct {
	sessions map[string]*entity.Session
}

func (s stubSessions) Create(context.Context, *entity.Session) error { return nil }
func (s stubSessions) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	return s.sessions[token], nil
}
func (s stubSessions) Revoke(context.Context, string) error                   { return nil }
func (s stubSessions) RevokeAllUserSessions(context.Context, uuid.UUID) error { return nil }
func (s stubSessions) RevokeOtherSessions(context.Context, uuid.UUID, string) (int64, error) {
	return 0, nil
}
func (s stubSessions) CleanExpiredSessions(context.Context) error { return nil }

type stubUsers struct {
	users map[uuid.UUID]*entity.User
}

func (s stubUsers) Create(context.Context, *entity.User) error { return nil }
func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return s.users[id], nil
}
func (s stubUsers) FindByEmail(context.Context, string) (*entity.User, error) { return nil, nil }
func (s stubUsers) FindByPhone(context.Context, string) (*entity.User, error) { return nil, nil }
func (s stubUsers) Update(context.Context, *entity.User) error                { return nil }

func authFixture(role entity.UserRole) (func(http.Handler) http.Handler, string, uuid.UUID) {
	userID := uuid.New()
	token := uuid.NewString()
	sessions := stubSessions{sessions: map[string]*entity.Session{
		token: {UserID: userID, ExpiresAt: time.Now().Add(time.Hour)},
	}}
	users := stubUsers{users: map[uuid.UUID]*entity.User{
		userID: {Base: entity.Base{ID: userID}, Role: role, IsActive: true},
	}}
	return AuthSession(sessions, users, zap.NewNop()), token, userID
}

func TestAuthSession(t *testing.T) {
	auth, token, userID := authFixture(entity.RoleServiceProvider)

	var gotID uuid.UUID
	var gotRole string
	handler := auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = utils.GetUserIDFromContext(r.Context())
		gotRole, _ = utils.GetRoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"valid bearer", "Bearer " + token, "", http.StatusOK},
		{"lowercase scheme", "bearer " + token, "", http.StatusOK},
		{"query fallback", "", "?access_token=" + token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, "", http.StatusUnauthorized},
		{"unknown token", "Bearer " + uuid.NewString(), "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bookings"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	assert.Equal(t, userID, gotID)
	assert.Equal(t, "serviceprovider", gotRole)
}

func TestRequireRole(t *testing.T) {
	auth, token, _ := authFixture(entity.RoleCustomer)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	providerOnly := auth(RequireRole(zap.NewNop(), entity.RoleServiceProvider)(ok))
	anyone := auth(RequireRole(zap.NewNop(), entity.RoleCustomer, entity.RoleServiceProvider)(ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	providerOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	anyone.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSharedSecret(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name   string
		secret string
		header string
		status int
	}{
		{"matching secret", "s3cret", "s3cret", http.StatusOK},
		{"wrong secret", "s3cret", "s3cre", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"unconfigured secret", "", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/payments/confirm", nil)
			if tc.header != "" {
				req.Header.Set(SharedSecretHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			RequireSharedSecret(tc.secret, zap.NewNop())(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := RateLimit(rl, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// A different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rl.Sweep(time.Now().Add(time.Hour))
	assert.Empty(t, rl.visitors)
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/bookings", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
