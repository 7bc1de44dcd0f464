package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shelterfinder/shelterfinder/internal/models"
	"github.com/shelterfinder/shelterfinder/internal/repository"
)

// In-memory fakes implementing the repository interfaces, shared by the
// service tests.

type fakeShelterRepo struct {
	shelters map[string]*models.Shelter
}

func newFakeShelterRepo() *fakeShelterRepo {
	return &fakeShelterRepo{shelters: make(map[string]*models.Shelter)}
}

func (r *fakeShelterRepo) List(_ context.Context, f repository.ShelterFilter) ([]models.Shelter, error) {
	out := []models.Shelter{}
	for _, s := range r.shelters {
		if f.Search != "" && !matchesSearch(s, f.Search) {
			continue
		}
		if !hasAllServices(s, f.Services) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func matchesSearch(s *models.Shelter, search string) bool {
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Address), q) ||
		strings.Contains(strings.ToLower(s.Notes), q)
}

func hasAllServices(s *models.Shelter, wanted []string) bool {
	for _, w := range wanted {
		found := false
		for _, have := range s.Services {
			if have == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakeShelterRepo) GetByID(_ context.Context, id string) (*models.Shelter, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	s, ok := r.shelters[id]
	if !ok {
		return nil, repository.ErrShelterNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeShelterRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Shelter, error) {
	out := []models.Shelter{}
	for _, id := range ids {
		if s, ok := r.shelters[id.Hex()]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeShelterRepo) Create(_ context.Context, s *models.Shelter) error {
	s.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	s.DateAdded = now
	s.LastUpdated = now
	cp := *s
	r.shelters[s.ID.Hex()] = &cp
	return nil
}

func (r *fakeShelterRepo) Update(_ context.Context, s *models.Shelter) error {
	if _, ok := r.shelters[s.ID.Hex()]; !ok {
		return repository.ErrShelterNotFound
	}
	s.LastUpdated = time.Now().UTC()
	cp := *s
	r.shelters[s.ID.Hex()] = &cp
	return nil
}

func (r *fakeShelterRepo) Delete(_ context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return repository.ErrInvalidID
	}
	if _, ok := r.shelters[id]; !ok {
		return repository.ErrShelterNotFound
	}
	delete(r.shelters, id)
	return nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	u.ID = primitive.NewObjectID()
	if u.BookmarkedShelters == nil {
		u.BookmarkedShelters = []primitive.ObjectID{}
	}
	cp := *u
	r.users[u.ID.Hex()] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ListPublic(_ context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range r.users {
		out = append(out, models.User{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out, nil
}

func (r *fakeUserRepo) AddBookmark(_ context.Context, userID string, shelterID primitive.ObjectID) error {
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

func (r *fakeUserRepo) RemoveBookmark(_ context.Context, userID string, shelterID primitive.ObjectID) error {
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

type fakeGeocoder struct {
	point *models.GeoPoint
	err   error
	calls int
}

func (g *fakeGeocoder) Geocode(context.Context, string) (*models.GeoPoint, error) {
	g.calls++
	return g.point, g.err
}

func (g *fakeGeocoder) IsConfigured() bool { return true }

type fakeBroadcaster struct {
	events []struct {
		Event string
		Data  interface{}
	}
}

func (b *fakeBroadcaster) Broadcast(event string, data interface{}) {
	b.events = append(b.events, struct {
		Event string
		Data  interface{}
	}{event, data})
}
