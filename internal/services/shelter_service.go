package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shelterfinder/shelterfinder/internal/geocode"
	"github.com/shelterfinder/shelterfinder/internal/models"
	"github.com/shelterfinder/shelterfinder/internal/repository"
	"github.com/shelterfinder/shelterfinder/internal/utils"
)

// ValidationFailed carries field-level messages for a 400 response.
type ValidationFailed struct {
	Fields []utils.ValidationError
}

func (e *ValidationFailed) Error() string { return "validation failed" }

// ShelterInput is the request body for create and update.
type ShelterInput struct {
	Name           string             `json:"name" validate:"required"`
	Address        string             `json:"address" validate:"required"`
	ContactInfo    models.ContactInfo `json:"contactInfo"`
	Services       []string           `json:"services"`
	Capacity       int                `json:"capacity"`
	OperatingHours string             `json:"operatingHours"`
	Eligibility    string             `json:"eligibility"`
	Notes          string             `json:"notes"`
}

type ShelterService struct {
	repo     repository.ShelterRepository
	geocoder geocode.Client
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewShelterService(repo repository.ShelterRepository, geocoder geocode.Client, log *zap.SugaredLogger) *ShelterService {
	return &ShelterService{
		repo:     repo,
		geocoder: geocoder,
		validate: validator.New(),
		log:      log,
	}
}

func (s *ShelterService) List(ctx context.Context, filter repository.ShelterFilter) ([]models.Shelter, error) {
	return s.repo.List(ctx, filter)
}

func (s *ShelterService) Get(ctx context.Context, id string) (*models.Shelter, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates the input, geocodes the address and stores the shelter.
// A failed geocoding call degrades the write to a record without
// coordinates instead of rejecting it.
func (s *ShelterService) Create(ctx context.Context, in ShelterInput) (*models.Shelter, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, &ValidationFailed{Fields: utils.FormatValidationErrors(err)}
	}

	shelter := &models.Shelter{
		Name:           in.Name,
		Address:        in.Address,
		Location:       s.geocodeOrNil(ctx, in.Address),
		ContactInfo:    in.ContactInfo,
		Services:       normalizeServices(in.Services),
		Capacity:       in.Capacity,
		OperatingHours: in.OperatingHours,
		Eligibility:    in.Eligibility,
		Notes:          in.Notes,
	}

	if err := s.repo.Create(ctx, shelter); err != nil {
		return nil, err
	}
	return shelter, nil
}

// Update re-geocodes only when the address text actually changed. An
// unchanged address keeps the stored point; a changed address that fails to
// geocode clears it.
func (s *ShelterService) Update(ctx context.Context, id string, in ShelterInput) (*models.Shelter, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, &ValidationFailed{Fields: utils.FormatValidationErrors(err)}
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	location := existing.Location
	if in.Address != existing.Address {
		location = s.geocodeOrNil(ctx, in.Address)
	}

	existing.Name = in.Name
	existing.Address = in.Address
	existing.Location = location
	existing.ContactInfo = in.ContactInfo
	existing.Services = normalizeServices(in.Services)
	existing.Capacity = in.Capacity
	existing.OperatingHours = in.OperatingHours
	existing.Eligibility = in.Eligibility
	existing.Notes = in.Notes

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *ShelterService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// normalizeServices keeps the stored and rendered value a JSON array even
// when the request body omits the field.
func normalizeServices(services []string) []string {
	if services == nil {
		return []string{}
	}
	return services
}

func (s *ShelterService) geocodeOrNil(ctx context.Context, address string) *models.GeoPoint {
	point, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.log.Warnw("geocoding request failed, storing shelter without coordinates",
			"address", address, "error", err)
		return nil
	}
	return point
}
