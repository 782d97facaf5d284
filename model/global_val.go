package model

const (
	// Exterior is the zone index of the ambient environment.
	Exterior = -1

	DefaultT0       = 293.15   // K
	DefaultPressure = 101325.0 // Pa

	// element display units
	UnitPa     = 0
	UnitM3PerH = 1
)
