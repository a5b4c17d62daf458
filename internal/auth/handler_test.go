// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveready/driveready-api/internal/account"
	"github.com/driveready/driveready-api/internal/core"
	"github.com/driveready/driveready-api/internal/middleware"
)

func newTestRouter(t *testing.T) (*chi.Mux, *serviceFixture) {
	t.Helper()

	f := newServiceFixture(t)
	accountSvc := account.NewService(f.repo, fakeRoles{})
	handler := NewHandler(f.service, accountSvc)

	authenticator := middleware.Authenticator(f.tokens, f.repo, nil)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, authenticator, nil)
	return router, f
}

func postJSON(
	router http.Handler,
	path, body, token string,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(
		http.MethodPost,
		path,
		strings.NewReader(body),
	)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) core.Envelope {
	t.Helper()
	var envelope core.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := postJSON(router, "/auth/register", `{
		"name": "Alice",
		"email": "alice@example.com",
		"password": "plenty secure 123"
	}`, "")

	require.Equal(t, http.StatusCreated, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.NotNil(t, envelope.Data)
}

func TestRegisterEndpoint_ValidationErrors(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := postJSON(router, "/auth/register", `{
		"name": "Alice",
		"email": "not-an-email",
		"password": "short"
	}`, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)

	fields := make([]string, 0, len(envelope.Errors))
	for _, fe := range envelope.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Password")
}

func TestRegisterEndpoint_MalformedBody(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := postJSON(router, "/auth/register", `{truncated`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint_StatusCodes(t *testing.T) {
	t.Parallel()
	router, f := newTestRouter(t)
	f.register(t)

	// Wrong password five times locks the account.
	for i := 0; i < 5; i++ {
		rec := postJSON(router, "/auth/login", `{
			"identifier": "alice@example.com",
			"password": "wrong"
		}`, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := postJSON(router, "/auth/login", `{
		"identifier": "alice@example.com",
		"password": "plenty secure 123"
	}`, "")
	assert.Equal(t, http.StatusLocked, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Message, "locked")
}

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()
	router, f := newTestRouter(t)
	registered := f.register(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	require.True(t, envelope.Success)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"email":"alice@example.com"`)
	assert.NotContains(t, string(data), "password")
}

func TestProfileEndpoint_RequiresAuth(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPasswordEndpoint_SameAnswerEitherWay(t *testing.T) {
	t.Parallel()
	router, f := newTestRouter(t)
	f.register(t)

	known := postJSON(router, "/auth/forgot-password",
		`{"identifier": "alice@example.com"}`, "")
	unknown := postJSON(router, "/auth/forgot-password",
		`{"identifier": "nobody@example.com"}`, "")

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}
