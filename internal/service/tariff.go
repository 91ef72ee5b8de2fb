package service

import "time"

// Tariff prices a transit from its distance and request time.
// Simple schedule: base fee + per-km rate, with a weekend/night multiplier
// and a minimum fare.
type Tariff struct{}

const (
	tariffBaseFee   = 8.0
	tariffKmRate    = 1.0
	tariffMinimum   = 10.0
	weekendFactor   = 1.5
	nightFactor     = 1.25
	nightStartsHour = 22
	nightEndsHour   = 6
)

// Price returns the fare for the given distance at the given time.
func (Tariff) Price(distanceKm float64, at time.Time) float64 {
	price := tariffBaseFee + distanceKm*tariffKmRate

	switch at.Weekday() {
	case time.Saturday, time.Sunday:
		price *= weekendFactor
	default:
		hour := at.Hour()
		if hour >= nightStartsHour || hour < nightEndsHour {
			price *= nightFactor
		}
	}

	if price < tariffMinimum {
		return tariffMinimum
	}
	return price
}
