package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shelterfinder/shelterfinder/internal/models"
)

var (
	ErrShelterNotFound = errors.New("shelter not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidID       = errors.New("invalid id format")
	ErrEmailTaken      = errors.New("email already registered")
)

// GeoQuery is a proximity filter: a point plus a radius in meters.
type GeoQuery struct {
	Lng          float64
	Lat          float64
	RadiusMeters int
}

// ShelterFilter combines the optional list filters. Zero values mean
// "no filtering" for the respective dimension.
type ShelterFilter struct {
	Search   string
	Services []string
	Near     *GeoQuery
}

type ShelterRepository interface {
	List(ctx context.Context, filter ShelterFilter) ([]models.Shelter, error)
	GetByID(ctx context.Context, id string) (*models.Shelter, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Shelter, error)
	Create(ctx context.Context, s *models.Shelter) error
	Update(ctx context.Context, s *models.Shelter) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListPublic(ctx context.Context) ([]models.User, error)
	AddBookmark(ctx context.Context, userID string, shelterID primitive.ObjectID) error
	RemoveBookmark(ctx context.Context, userID string, shelterID primitive.ObjectID) error
}
