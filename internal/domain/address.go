package domain

// Address is a normalized location. Lat/Lng hold the provider-resolved
// coordinates once Resolved is true; resolution happens at most once per
// address and is cached.
type Address struct {
	ID             string
	Country        string
	City           string
	Street         string
	BuildingNumber string
	Lat            float64
	Lng            float64
	Resolved       bool
}
