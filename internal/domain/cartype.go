package domain

// CarType is a vehicle service class. Only active classes participate in
// matching.
type CarType struct {
	Class       string
	Description string
	Active      bool
}
