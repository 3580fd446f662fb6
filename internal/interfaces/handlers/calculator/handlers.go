package calculator

import (
	calcsvc "tidechain-backend/internal/application/calculator"
	"tidechain-backend/internal/infrastructure/metrics"
	"tidechain-backend/internal/pkg/response"
	"tidechain-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Metrics *metrics.Metrics
}

// EmissionsRequest is the calculator body. Absent fields count as zero.
type EmissionsRequest struct {
	Electricity *float64 `json:"electricity" validate:"omitempty,gte=0"`
	Fuel        *float64 `json:"fuel" validate:"omitempty,gte=0"`
	FlightKm    *float64 `json:"flight_km" validate:"omitempty,gte=0"`
	CarKm       *float64 `json:"car_km" validate:"omitempty,gte=0"`
	Waste       *float64 `json:"waste" validate:"omitempty,gte=0"`
}

func (r EmissionsRequest) input() calcsvc.Input {
	return calcsvc.Input{
		Electricity: orZero(r.Electricity),
		Fuel:        orZero(r.Fuel),
		FlightKm:    orZero(r.FlightKm),
		CarKm:       orZero(r.CarKm),
		Waste:       orZero(r.Waste),
	}
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Emissions POST /api/v1/calculator/emissions (public).
func (h *Handlers) Emissions(c *fiber.Ctx) error {
	var req EmissionsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
		}
	}
	if err := validation.Struct(req); err != nil {
		return response.FromError(c, err)
	}
	result := calcsvc.Calculate(req.input())
	h.Metrics.IncEmissionsCalc()
	return response.Success(c, "Emissions calculated", result)
}
