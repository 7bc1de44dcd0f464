package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shelterfinder/shelterfinder/internal/repository"
	"github.com/shelterfinder/shelterfinder/internal/services"
)

const defaultRadiusMeters = 10000 // 10km

type ShelterHandler struct {
	svc *services.ShelterService
	log *zap.SugaredLogger
}

func NewShelterHandler(svc *services.ShelterService, log *zap.SugaredLogger) *ShelterHandler {
	return &ShelterHandler{svc: svc, log: log}
}

// List handles GET /api/shelters with optional search, services and
// proximity filters.
func (h *ShelterHandler) List(c *fiber.Ctx) error {
	filter := repository.ShelterFilter{
		Search: c.Query("search"),
	}

	if services := c.Query("services"); services != "" {
		for _, s := range strings.Split(services, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Services = append(filter.Services, s)
			}
		}
	}

	if near := c.Query("near"); near != "" {
		if geo, ok := parseNear(near, c.Query("radius")); ok {
			filter.Near = geo
		} else {
			h.log.Warnw("ignoring proximity filter with invalid coordinates", "near", near)
		}
	}

	shelters, err := h.svc.List(c.Context(), filter)
	if err != nil {
		h.log.Errorw("failed to list shelters", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error: Could not fetch shelters."})
	}
	return c.JSON(shelters)
}

func parseNear(near, radius string) (*repository.GeoQuery, bool) {
	parts := strings.SplitN(near, ",", 2)
	if len(parts) != 2 {
		return nil, false
	}
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLng != nil || errLat != nil {
		return nil, false
	}

	meters := defaultRadiusMeters
	if r, err := strconv.Atoi(radius); err == nil && r > 0 {
		meters = r
	}
	return &repository.GeoQuery{Lng: lng, Lat: lat, RadiusMeters: meters}, true
}

func (h *ShelterHandler) Get(c *fiber.Ctx) error {
	shelter, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidID):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Shelter not found (invalid ID format)."})
		case errors.Is(err, repository.ErrShelterNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Shelter not found."})
		}
		h.log.Errorw("failed to fetch shelter", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error: Could not fetch shelter."})
	}
	return c.JSON(shelter)
}

func (h *ShelterHandler) Create(c *fiber.Ctx) error {
	var in services.ShelterInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body."})
	}

	shelter, err := h.svc.Create(c.Context(), in)
	if err != nil {
		var vf *services.ValidationFailed
		if errors.As(err, &vf) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation Error", "errors": vf.Fields})
		}
		h.log.Errorw("failed to create shelter", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error: Could not create shelter."})
	}
	return c.Status(fiber.StatusCreated).JSON(shelter)
}

func (h *ShelterHandler) Update(c *fiber.Ctx) error {
	var in services.ShelterInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body."})
	}

	shelter, err := h.svc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		var vf *services.ValidationFailed
		switch {
		case errors.As(err, &vf):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation Error", "errors": vf.Fields})
		case errors.Is(err, repository.ErrInvalidID):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Shelter not found (invalid ID format)."})
		case errors.Is(err, repository.ErrShelterNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Shelter not found."})
		}
		h.log.Errorw("failed to update shelter", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error: Could not update shelter."})
	}
	return c.JSON(shelter)
}

func (h *ShelterHandler) Delete(c *fiber.Ctx) error {
	err := h.svc.Delete(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidID):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shelter ID format."})
		case errors.Is(err, repository.ErrShelterNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Shelter not found."})
		}
		h.log.Errorw("failed to delete shelter", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error: Could not delete shelter."})
	}
	return c.JSON(fiber.Map{"message": "Shelter removed successfully."})
}
