package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shelterfinder/shelterfinder/internal/handlers"
	"github.com/shelterfinder/shelterfinder/internal/middleware"
	"github.com/shelterfinder/shelterfinder/internal/models"
	"github.com/shelterfinder/shelterfinder/internal/repository"
	"github.com/shelterfinder/shelterfinder/internal/services"
	"github.com/shelterfinder/shelterfinder/internal/utils"
	"github.com/shelterfinder/shelterfinder/internal/ws"
)

// in-memory repos backing the route tests

type memShelterRepo struct {
	shelters map[string]*models.Shelter
}

func (r *memShelterRepo) List(context.Context, repository.ShelterFilter) ([]models.Shelter, error) {
	out := []models.Shelter{}
	for _, s := range r.shelters {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memShelterRepo) GetByID(_ context.Context, id string) (*models.Shelter, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	s, ok := r.shelters[id]
	if !ok {
		return nil, repository.ErrShelterNotFound
	}
	return s, nil
}

func (r *memShelterRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Shelter, error) {
	out := []models.Shelter{}
	for _, id := range ids {
		if s, ok := r.shelters[id.Hex()]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memShelterRepo) Create(_ context.Context, s *models.Shelter) error {
	s.ID = primitive.NewObjectID()
	s.DateAdded = time.Now().UTC()
	s.LastUpdated = s.DateAdded
	r.shelters[s.ID.Hex()] = s
	return nil
}

func (r *memShelterRepo) Update(_ context.Context, s *models.Shelter) error {
	if _, ok := r.shelters[s.ID.Hex()]; !ok {
		return repository.ErrShelterNotFound
	}
	r.shelters[s.ID.Hex()] = s
	return nil
}

func (r *memShelterRepo) Delete(_ context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return repository.ErrInvalidID
	}
	if _, ok := r.shelters[id]; !ok {
		return repository.ErrShelterNotFound
	}
	delete(r.shelters, id)
	return nil
}

type memUserRepo struct {
	users map[string]*models.User
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	u.ID = primitive.NewObjectID()
	u.BookmarkedShelters = []primitive.ObjectID{}
	r.users[u.ID.Hex()] = u
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) ListPublic(context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range r.users {
		out = append(out, models.User{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out, nil
}

func (r *memUserRepo) AddBookmark(_ context.Context, userID string, shelterID primitive.ObjectID) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for _, id := range u.BookmarkedShelters {
		if id == shelterID {
			return nil
		}
	}
	u.BookmarkedShelters = append(u.BookmarkedShelters, shelterID)
	return nil
}

func (r *memUserRepo) RemoveBookmark(_ context.Context, userID string, shelterID primitive.ObjectID) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	kept := u.BookmarkedShelters[:0]
	for _, id := range u.BookmarkedShelters {
		if id != shelterID {
			kept = append(kept, id)
		}
	}
	u.BookmarkedShelters = kept
	return nil
}

type staticGeocoder struct {
	point *models.GeoPoint
}

func (g *staticGeocoder) Geocode(context.Context, string) (*models.GeoPoint, error) {
	return g.point, nil
}

func (g *staticGeocoder) IsConfigured() bool { return g.point != nil }

type testEnv struct {
	app      *fiber.App
	shelters *memShelterRepo
	users    *memUserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	shelterRepo := &memShelterRepo{shelters: make(map[string]*models.Shelter)}
	userRepo := &memUserRepo{users: make(map[string]*models.User)}

	log := zap.NewNop().Sugar()
	jwtManager := utils.NewJWTManager("test-secret", 5*time.Hour)
	hub := ws.NewHub(log)

	h := Handlers{
		Shelter: handlers.NewShelterHandler(services.NewShelterService(shelterRepo, &staticGeocoder{}, log), log),
		Auth:    handlers.NewAuthHandler(services.NewAuthService(userRepo, jwtManager, log), log),
		User:    handlers.NewUserHandler(services.NewUserService(userRepo, shelterRepo, hub, log), log),
	}

	app := fiber.New()
	protect := middleware.Protect(jwtManager, userRepo)
	authLimit := middleware.NewRateLimiter(nil, "test", 0, time.Minute).ByIP()
	Setup(app, h, hub, protect, authLimit)

	return &testEnv{app: app, shelters: shelterRepo, users: userRepo}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && json.Valid(raw) {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()
	resp, body := e.request(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterLoginFlow(t *testing.T) {
	e := newTestEnv(t)

	e.register(t, "A", "a@x.com", "secret1")

	resp, body := e.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, body = e.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "A", "a@x.com", "secret1")

	resp, body := e.request(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "B", "email": "A@X.COM", "password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User already exists with this email", body["message"])
}

func TestShelterCRUD(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.request(t, http.MethodPost, "/api/shelters", "", map[string]interface{}{
		"name":     "Hope House",
		"address":  "1 Main St",
		"services": []string{"Food"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	resp, body = e.request(t, http.MethodGet, "/api/shelters/"+id, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hope House", body["name"])

	resp, body = e.request(t, http.MethodPut, "/api/shelters/"+id, "", map[string]interface{}{
		"name":    "Hope House Renamed",
		"address": "1 Main St",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hope House Renamed", body["name"])
	assert.Equal(t, []interface{}{}, body["services"])

	resp, _ = e.request(t, http.MethodDelete, "/api/shelters/"+id, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.request(t, http.MethodGet, "/api/shelters/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestShelterCreateValidation(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.request(t, http.MethodPost, "/api/shelters", "", map[string]interface{}{
		"address": "1 Main St",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation Error", body["message"])
	assert.NotEmpty(t, body["errors"])
}

func TestDeleteNonexistentShelterIsNotFound(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.request(t, http.MethodDelete, "/api/shelters/"+primitive.NewObjectID().Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.request(t, http.MethodDelete, "/api/shelters/garbage", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/user"},
		{http.MethodGet, "/api/users/all"},
		{http.MethodGet, "/api/users/bookmarks"},
		{http.MethodPost, "/api/users/bookmarks/" + primitive.NewObjectID().Hex()},
	}

	for _, p := range paths {
		resp, _ := e.request(t, p.method, p.path, "", nil)
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", p.method, p.path)
	}
}

func TestTokenForDeletedUserIsRejected(t *testing.T) {
	e := newTestEnv(t)

	token := e.register(t, "A", "a@x.com", "secret1")

	// token works while the user exists
	resp, _ := e.request(t, http.MethodGet, "/api/auth/user", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for id := range e.users.users {
		delete(e.users.users, id)
	}

	resp, _ = e.request(t, http.MethodGet, "/api/auth/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBookmarkFlow(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "A", "a@x.com", "secret1")

	resp, body := e.request(t, http.MethodPost, "/api/shelters", "", map[string]interface{}{
		"name": "Hope House", "address": "1 Main St",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	shelterID := body["id"].(string)

	// add twice: same end state
	for i := 0; i < 2; i++ {
		resp, _ = e.request(t, http.MethodPost, "/api/users/bookmarks/"+shelterID, token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/bookmarks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	var shelters []map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&shelters))
	require.Len(t, shelters, 1)
	assert.Equal(t, "Hope House", shelters[0]["name"])

	// bookmarking a missing shelter is a 404
	resp, _ = e.request(t, http.MethodPost, "/api/users/bookmarks/"+primitive.NewObjectID().Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// removing twice is fine
	for i := 0; i < 2; i++ {
		resp, _ = e.request(t, http.MethodDelete, "/api/users/bookmarks/"+shelterID, token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestListUsersReturnsNameAndEmail(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "A", "a@x.com", "secret1")
	e.register(t, "B", "b@x.com", "secret1")

	req := httptest.NewRequest(http.MethodGet, "/api/users/all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEmpty(t, u["name"])
		assert.NotEmpty(t, u["email"])
	}
}

func TestUnmatchedAPIPathIs404(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.request(t, http.MethodGet, fmt.Sprintf("/api/unknown/%d", time.Now().Unix()), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
