package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Messages returned to clients. Upstream and store details are logged only.
const (
	msgListFailed     = "Failed to fetch locations"
	msgCreateFailed   = "Failed to create location"
	msgDeleteFailed   = "Failed to delete location"
	msgSearchFailed   = "Failed to search locations"
	msgWeatherFailed  = "Failed to fetch weather data"
	msgLocationAbsent = "Location not found"
	msgInvalidID      = "Invalid location id"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("api")

	api := app.Group("/api")

	api.Get("/locations", func(c *fiber.Ctx) error {
		locs, err := service.ListLocations(c.UserContext())
		if err != nil {
			log.Error("list locations failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, msgListFailed)
		}
		return c.JSON(locs)
	})

	api.Post("/locations", func(c *fiber.Ctx) error {
		in, err := weather.ParseNewLocation(c.Body())
		if err != nil {
			return err
		}

		loc, err := service.CreateLocation(c.UserContext(), in)
		if err != nil {
			log.Error("create location failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, msgCreateFailed)
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	})

	api.Get("/locations/search", func(c *fiber.Ctx) error {
		results, err := service.SearchLocations(c.UserContext(), c.Query("query"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, msgSearchFailed)
		}
		return c.JSON(results)
	})

	api.Delete("/locations/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return &weather.ValidationError{Field: "id", Message: msgInvalidID}
		}

		if err := service.DeleteLocation(c.UserContext(), id); err != nil {
			log.Error("delete location failed", zap.Int64("id", id), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, msgDeleteFailed)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Get("/weather/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			// A non-numeric id can never name a stored location.
			return fiber.NewError(fiber.StatusNotFound, msgLocationAbsent)
		}

		data, err := service.CurrentWeather(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, msgLocationAbsent)
			}
			if !errors.Is(err, weather.ErrUpstream) {
				log.Error("weather lookup failed", zap.Int64("id", id), zap.Error(err))
			}
			return fiber.NewError(fiber.StatusInternalServerError, msgWeatherFailed)
		}
		return c.JSON(data)
	})
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
