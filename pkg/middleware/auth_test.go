package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/enventory/pkg/auth"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

func okHandler(t *testing.T, wantRole rbac.Role) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := rbac.FromCtx(r.Context())
		require.True(t, ok, "principal must be in context past the gate")
		assert.Equal(t, wantRole, p.Role)
		w.WriteHeader(http.StatusOK)
	})
}

func bearerRequest(t *testing.T, role string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken("507f1f77bcf86cd799439011", "tester", role)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestRequireAuthNoCredentials(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(okHandler(t, "")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthBearerToken(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(okHandler(t, rbac.RoleWorker)).ServeHTTP(rec, bearerRequest(t, "worker"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthGarbageToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	RequireAuth(okHandler(t, "")).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleWorkerGate(t *testing.T) {
	gate := RequireRole(rbac.RoleWorker)

	// Worker passes.
	rec := httptest.NewRecorder()
	gate(okHandler(t, rbac.RoleWorker)).ServeHTTP(rec, bearerRequest(t, "worker"))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Admin passes every worker gate.
	rec = httptest.NewRecorder()
	gate(okHandler(t, rbac.RoleAdmin)).ServeHTTP(rec, bearerRequest(t, "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleAdminGate(t *testing.T) {
	gate := RequireRole(rbac.RoleAdmin)

	// Worker is rejected with 403, not 401.
	rec := httptest.NewRecorder()
	gate(okHandler(t, "")).ServeHTTP(rec, bearerRequest(t, "worker"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// No credentials at all is 401.
	rec = httptest.NewRecorder()
	gate(okHandler(t, "")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	gate(okHandler(t, rbac.RoleAdmin)).ServeHTTP(rec, bearerRequest(t, "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejectsUnknownRoleInToken(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(okHandler(t, "")).ServeHTTP(rec, bearerRequest(t, "superuser"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
