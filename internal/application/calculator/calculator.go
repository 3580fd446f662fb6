package calculator

import "github.com/shopspring/decimal"

// Emission factors in kg CO2 per unit.
var (
	ElectricityFactor = decimal.RequireFromString("0.92")  // per kWh
	FuelFactor        = decimal.RequireFromString("2.68")  // per liter (diesel)
	FlightFactor      = decimal.RequireFromString("0.255") // per km
	CarFactor         = decimal.RequireFromString("0.21")  // per km
	WasteFactor       = decimal.NewFromInt(1000)           // per ton
)

var kgPerTon = decimal.NewFromInt(1000)

// Input is a consumption profile. All values are non-negative; validation
// happens at the request boundary.
type Input struct {
	Electricity float64 `json:"electricity"`
	Fuel        float64 `json:"fuel"`
	FlightKm    float64 `json:"flight_km"`
	CarKm       float64 `json:"car_km"`
	Waste       float64 `json:"waste"`
}

// Result holds per-category emissions in kg, the total in tons and the
// number of one-ton credits needed to offset it.
type Result struct {
	ElectricityEmissions float64 `json:"electricity_emissions"`
	FuelEmissions        float64 `json:"fuel_emissions"`
	FlightEmissions      float64 `json:"flight_emissions"`
	CarEmissions         float64 `json:"car_emissions"`
	WasteEmissions       float64 `json:"waste_emissions"`
	TotalEmissions       float64 `json:"total_emissions"`
	SuggestedCredits     int64   `json:"suggested_credits"`
}

// Calculate is pure and deterministic. Arithmetic is decimal so that a total
// landing exactly on a whole ton never rounds up to an extra credit.
func Calculate(in Input) Result {
	electricity := decimal.NewFromFloat(in.Electricity).Mul(ElectricityFactor)
	fuel := decimal.NewFromFloat(in.Fuel).Mul(FuelFactor)
	flight := decimal.NewFromFloat(in.FlightKm).Mul(FlightFactor)
	car := decimal.NewFromFloat(in.CarKm).Mul(CarFactor)
	waste := decimal.NewFromFloat(in.Waste).Mul(WasteFactor)

	totalKg := decimal.Sum(electricity, fuel, flight, car, waste)
	tons := totalKg.Div(kgPerTon)

	return Result{
		ElectricityEmissions: electricity.InexactFloat64(),
		FuelEmissions:        fuel.InexactFloat64(),
		FlightEmissions:      flight.InexactFloat64(),
		CarEmissions:         car.InexactFloat64(),
		WasteEmissions:       waste.InexactFloat64(),
		TotalEmissions:       tons.InexactFloat64(),
		SuggestedCredits:     tons.Ceil().IntPart(),
	}
}
