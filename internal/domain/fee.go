package domain

// FeeType determines how a driver's fee is derived from the transit price.
type FeeType string

const (
	FeeTypeFlat       FeeType = "FLAT"
	FeeTypePercentage FeeType = "PERCENTAGE"
)

// DriverFeeSchedule is the per-driver fee rule applied at completion.
// FLAT subtracts Amount from the price; PERCENTAGE takes Amount percent of
// it. MinFee is the floor either way.
type DriverFeeSchedule struct {
	DriverID string
	FeeType  FeeType
	Amount   float64
	MinFee   float64
}
