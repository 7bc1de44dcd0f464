package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelterfinder/shelterfinder/internal/models"
	"github.com/shelterfinder/shelterfinder/internal/repository"
	"github.com/shelterfinder/shelterfinder/internal/utils"
)

// ErrInvalidCredentials is returned for any login failure. The response
// never reveals whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthService struct {
	users    repository.UserRepository
	jwt      *utils.JWTManager
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewAuthService(users repository.UserRepository, jwtManager *utils.JWTManager, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		users:    users,
		jwt:      jwtManager,
		validate: validator.New(),
		log:      log,
	}
}

// Register creates an account and issues a token. Emails are lowercased on
// the way in so uniqueness is case-insensitive.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, models.PublicUser, error) {
	if err := s.validate.Struct(in); err != nil {
		return "", models.PublicUser{}, &ValidationFailed{Fields: utils.FormatValidationErrors(err)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.PublicUser{}, err
	}

	user := &models.User{
		Name:     in.Name,
		Email:    strings.ToLower(in.Email),
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", models.PublicUser{}, err
	}

	token, err := s.jwt.Generate(user.ID.Hex())
	if err != nil {
		return "", models.PublicUser{}, err
	}
	return token, user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.PublicUser, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", models.PublicUser{}, ErrInvalidCredentials
		}
		return "", models.PublicUser{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", models.PublicUser{}, ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(user.ID.Hex())
	if err != nil {
		return "", models.PublicUser{}, err
	}
	return token, user.Public(), nil
}

// CurrentUser returns the full record for the authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}
