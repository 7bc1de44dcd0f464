package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shelterfinder/shelterfinder/internal/models"
	"github.com/shelterfinder/shelterfinder/internal/repository"
)

// Broadcaster pushes an event to any currently connected observers.
// Implemented by ws.Hub.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

type UserService struct {
	users    repository.UserRepository
	shelters repository.ShelterRepository
	hub      Broadcaster
	log      *zap.SugaredLogger
}

func NewUserService(users repository.UserRepository, shelters repository.ShelterRepository, hub Broadcaster, log *zap.SugaredLogger) *UserService {
	return &UserService{
		users:    users,
		shelters: shelters,
		hub:      hub,
		log:      log,
	}
}

// AddBookmark saves the shelter into the user's bookmark set. The insert is
// set-semantic, so repeating it is a no-op. On success a best-effort event
// is broadcast to connected observers.
func (s *UserService) AddBookmark(ctx context.Context, userID, shelterID string) error {
	shelter, err := s.shelters.GetByID(ctx, shelterID)
	if err != nil {
		return err
	}

	if err := s.users.AddBookmark(ctx, userID, shelter.ID); err != nil {
		return err
	}

	s.hub.Broadcast("shelter_bookmarked", map[string]string{"shelterName": shelter.Name})
	return nil
}

// RemoveBookmark pulls the shelter from the set. Removing an element that
// was never bookmarked is a silent success.
func (s *UserService) RemoveBookmark(ctx context.Context, userID, shelterID string) error {
	oid, err := primitive.ObjectIDFromHex(shelterID)
	if err != nil {
		return repository.ErrInvalidID
	}
	return s.users.RemoveBookmark(ctx, userID, oid)
}

// Bookmarks resolves the caller's bookmark set to full shelter documents.
func (s *UserService) Bookmarks(ctx context.Context, userID string) ([]models.Shelter, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.shelters.GetByIDs(ctx, user.BookmarkedShelters)
}

// ListUsers returns name and email of every registered user.
func (s *UserService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.users.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return out, nil
}
