package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/refine"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/user/entity"
)

type userStore struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func (s *userStore) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *userStore) GetByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userStore) UpdateProfile(_ context.Context, id string, fields []entity.ProfileField) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	for _, f := range fields {
		v := f.Value
		switch f.Column {
		case "name":
			u.Name = &v
		case "email":
			u.Email = v
		case "bio":
			u.Bio = &v
		case "location":
			u.Location = &v
		}
	}
	return nil
}

type tokenStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func (s *tokenStore) Save(_ context.Context, token, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = true
	return nil
}

func (s *tokenStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token], nil
}

func (s *tokenStore) DeleteByToken(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tokens[token] {
		return 0, nil
	}
	delete(s.tokens, token)
	return 1, nil
}

func (s *tokenStore) PurgeExpired(context.Context) (int64, error) { return 0, nil }

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, prompt string, _ int) ([]string, error) {
	return []string{"refined: " + prompt[strings.LastIndex(prompt, ": ")+2:]}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop().Sugar()
	users := user.NewUserService(nil, &userStore{users: map[string]*entity.User{}}, user.BcryptHasher{Cost: 4})
	_, err := users.CreateUser(context.Background(), "user@example.com", "correct", entity.RoleUser)
	require.NoError(t, err)

	codec, err := auth.NewCodec("router-test-secret")
	require.NoError(t, err)
	authSvc := auth.NewAuthService(users, &tokenStore{tokens: map[string]bool{}}, codec, 30*time.Minute, logger)

	srv := httptest.NewServer(RegisterRoutes(logger, authSvc, users, refine.NewService(echoCompleter{}, logger)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestRoutes_AccountFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", `{"username":"user@example.com","password":"correct"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	assert.EqualValues(t, 1800, body["expires_in"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/user/info", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user@example.com", body["email"])
	assert.Equal(t, "USER", body["role"])
	assert.NotContains(t, body, "password")

	resp, body = doJSON(t, http.MethodPut, srv.URL+"/user/profile", token, `{"name":"Ada","bio":"mathematician"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"name", "bio"}, body["updated_fields"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/auth/logout", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User logged out successfully.", body["message"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/user/info", token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "revoked token must be rejected")

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/auth/logout", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Invalid token or already logged out.", body["message"])
}

func TestRoutes_Unauthorized(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/user/info"},
		{http.MethodPut, "/user/profile"},
	} {
		resp, body := doJSON(t, tc.method, srv.URL+tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, tc.path)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		assert.NotEmpty(t, body["error"])
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", `{"username":"user@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Incorrect username or password", body["error"])
}

func TestRoutes_RefineAndHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/refine-prompt", "", `{"prompt":"cats"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cats", body["original_prompt"])
	assert.Equal(t, "refined: cats", body["refined_prompt"])
	assert.Equal(t, "COMPLETED", body["refinement_status"])

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get(requestIDHeader))
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))

	res, err = http.Get(srv.URL + "/auth/login")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestRequestIDMiddleware_Propagates(t *testing.T) {
	h := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc-123", r.Header.Get(requestIDHeader))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(zap.NewNop().Sugar())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}

func TestRecoverMiddleware_HeadersAlreadySent(t *testing.T) {
	h := RecoverMiddleware(zap.NewNop().Sugar())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("late failure")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestRecoverMiddleware_AbortHandler(t *testing.T) {
	h := RecoverMiddleware(zap.NewNop().Sugar())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
