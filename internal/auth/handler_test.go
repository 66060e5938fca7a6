package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandler_Login(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, zap.NewNop().Sugar())

	tests := []struct {
		name        string
		contentType string
		body        string
		query       string
		wantStatus  int
	}{
		{name: "json ok", contentType: "application/json", body: `{"username":"user@example.com","password":"correct"}`, wantStatus: http.StatusOK},
		{name: "form ok", contentType: "application/x-www-form-urlencoded", body: url.Values{"username": {"user@example.com"}, "password": {"correct"}}.Encode(), wantStatus: http.StatusOK},
		{name: "query ok", query: "?username=user%40example.com&password=correct", wantStatus: http.StatusOK},
		{name: "bad password", contentType: "application/json", body: `{"username":"user@example.com","password":"nope"}`, wantStatus: http.StatusUnauthorized},
		{name: "unknown user", contentType: "application/json", body: `{"username":"ghost@example.com","password":"correct"}`, wantStatus: http.StatusUnauthorized},
		{name: "bad json", contentType: "application/json", body: `{`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login"+tt.query, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			switch tt.wantStatus {
			case http.StatusOK:
				var out LoginResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
				assert.NotEmpty(t, out.AccessToken)
				assert.Equal(t, int64(1800), out.ExpiresIn)
			case http.StatusUnauthorized:
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
				assert.JSONEq(t, `{"error":"Incorrect username or password"}`, rec.Body.String())
			}
		})
	}
}

func TestHandler_Login_OperationalError(t *testing.T) {
	svc, _, store := newTestService(t)
	store.saveErr = assert.AnError
	h := NewHandler(svc, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"user@example.com","password":"correct"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "record token")
}

func TestHandler_Logout(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, zap.NewNop().Sugar())
	login, err := svc.Login(context.Background(), "user@example.com", "correct")
	require.NoError(t, err)

	do := func(header string) (int, string) {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.Logout(rec, req)
		var out LogoutResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		return rec.Code, out.Message
	}

	code, msg := do("Bearer " + login.AccessToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User logged out successfully.", msg)

	code, msg = do("Bearer " + login.AccessToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Invalid token or already logged out.", msg)

	code, msg = do("")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Invalid token or already logged out.", msg)
}

func TestRequireAuth(t *testing.T) {
	svc, _, store := newTestService(t)
	login, err := svc.Login(context.Background(), "user@example.com", "correct")
	require.NoError(t, err)

	var got *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	mw := RequireAuth(svc, zap.NewNop().Sugar())(next)

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/user/info", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		return rec
	}

	rec := call("Bearer " + login.AccessToken)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "1001", got.UserID)
	assert.Equal(t, "user@example.com", got.Email)

	for _, header := range []string{"", "Bearer ", login.AccessToken, "Bearer not-a-token"} {
		rec := call(header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	}

	store.existsErr = assert.AnError
	rec = call("Bearer " + login.AccessToken)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	store.existsErr = nil

	svc.Logout(context.Background(), "Bearer "+login.AccessToken)
	rec = call("Bearer " + login.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityFrom_Missing(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), &Identity{UserID: "7"})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "7", id.UserID)
}
