package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/app/services"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
	"github.com/shashiranjanraj/enventory/pkg/session"
)

// stubAccountRepo is the minimal in-memory account store the auth handler
// tests need.
type stubAccountRepo struct {
	mu   sync.Mutex
	accs map[rbac.Role][]*models.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accs: map[rbac.Role][]*models.Account{}}
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, role rbac.Role, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accs[role] {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, role rbac.Role, id primitive.ObjectID) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accs[role] {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByIDs(ctx context.Context, role rbac.Role, ids []primitive.ObjectID) ([]models.Account, error) {
	var out []models.Account
	for _, id := range ids {
		if a, err := r.FindByID(ctx, role, id); err == nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAccountRepo) Create(_ context.Context, role rbac.Role, acc *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc.ID = primitive.NewObjectID()
	acc.Role = role
	cp := *acc
	r.accs[role] = append(r.accs[role], &cp)
	return nil
}

func (r *stubAccountRepo) AppendOrder(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

// With no reachable session store, login must not leave a usable session
// cookie behind: the client falls back to the bearer token, and any cookie
// in the response is an expiring one.
func TestLoginExpiresCookieWhenSessionStoreIsDown(t *testing.T) {
	repo := newStubAccountRepo()
	auth := services.NewAuthService(repo)
	_, err := auth.Register(context.Background(), rbac.RoleWorker, services.RegisterInput{
		Username: "ravi",
		Password: "secret123",
	})
	require.NoError(t, err)

	c := NewAuthController(auth)
	h := session.Middleware(http.HandlerFunc(c.WorkerLogin))

	req := httptest.NewRequest(http.MethodPost, "/auth/worker-login",
		strings.NewReader(`{"username":"ravi","password":"secret123"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Data.Token)

	var found bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			found = true
			assert.Less(t, ck.MaxAge, 0, "session cookie must be expired, not persisted")
		}
	}
	require.True(t, found, "expected an expiring session cookie")
}
