package httpapi

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/dashboard-feeds/internal/feeds"
	"github.com/i474232898/dashboard-feeds/internal/polling"
)

var validate = validator.New()

// ErrorHandler is the centralized error response of the app.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
//
// Feed failures never surface as HTTP errors: they are part of the returned
// view model. Only malformed requests and lifecycle problems are reported
// through the error handler.
func RegisterRoutes(app *fiber.App, dashboard *feeds.Dashboard) {
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(dashboard.View())
	})

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		return c.JSON(dashboard.Geocode.View())
	})

	v1.Post("/geocode", func(c *fiber.Ctx) error {
		var req geocodeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if _, err := dashboard.Geocode.Resolve(c.UserContext(), req.Query); err != nil && !errors.Is(err, feeds.ErrEmptyQuery) {
			log.Printf("DEBUG: geocode %q: %v", req.Query, err)
		}
		return c.JSON(dashboard.Geocode.View())
	})

	v1.Get("/transit/arrivals", func(c *fiber.Ctx) error {
		return c.JSON(dashboard.Transit.View())
	})

	v1.Post("/transit/refresh", func(c *fiber.Ctx) error {
		if err := refresh(dashboard.Transit.Refresh(c.UserContext())); err != nil {
			return err
		}
		return c.JSON(dashboard.Transit.View())
	})

	v1.Get("/air-quality", func(c *fiber.Ctx) error {
		return c.JSON(airQualityResponse(dashboard))
	})

	v1.Put("/air-quality/city", func(c *fiber.Ctx) error {
		var req cityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := dashboard.AirQuality.SetCity(req.City); err != nil {
			log.Printf("ERROR: air-quality: switch to %q: %v", req.City, err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to restart air-quality polling")
		}
		return c.JSON(airQualityResponse(dashboard))
	})

	v1.Post("/air-quality/refresh", func(c *fiber.Ctx) error {
		if err := refresh(dashboard.AirQuality.Refresh(c.UserContext())); err != nil {
			return err
		}
		return c.JSON(airQualityResponse(dashboard))
	})
}

// geocodeRequest is the body of a resolve action. An empty query is accepted
// and leaves the resolver untouched.
type geocodeRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// cityRequest is the body of a city change; empty selects the default city.
type cityRequest struct {
	City string `json:"city" validate:"max=100"`
}

type airQualityView struct {
	City string `json:"city"`
	polling.View[feeds.AirQualityView]
}

func airQualityResponse(d *feeds.Dashboard) airQualityView {
	return airQualityView{
		City: d.AirQuality.City(),
		View: d.AirQuality.View(),
	}
}

// refresh maps the outcome of a user-triggered cycle to an HTTP error.
// Fetch failures are already in the view, so only lifecycle errors count.
func refresh(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, polling.ErrNotRunning):
		return fiber.NewError(fiber.StatusConflict, "feed is not running")
	default:
		return nil
	}
}
