package building

import (
	"github.com/google/uuid"
)

// Handle identifies a source model entity. Nil means "not set".
type Handle = uuid.UUID

var Nil Handle = uuid.Nil

// surface types
const (
	Wall        = "Wall"
	Floor       = "Floor"
	RoofCeiling = "RoofCeiling"
)

// outside boundary conditions
const (
	Outdoors  = "Outdoors"
	Adjacent  = "Surface"
	Ground    = "Ground"
	Adiabatic = "Adiabatic"
)

type Story struct {
	Handle    Handle
	Name      string
	Height    float64  // nominal floor to floor height, m
	Elevation *float64 // nominal z coordinate, m
}

type ThermalZone struct {
	Handle     Handle
	Name       string
	Volume     float64 // 0 when not set on the zone
	Spaces     []Handle
	SupplyNode string
	ReturnNode string
}

type Space struct {
	Handle    Handle
	Name      string
	Story     Handle
	Zone      Handle
	Volume    float64
	FloorArea float64
}

type Surface struct {
	Handle   Handle
	Name     string
	Type     string
	Boundary string
	Space    Handle
	Adjacent Handle
	Vertices []Point3d
	Area     float64 // gross area, m^2
	Azimuth  float64 // outward normal, radians clockwise from north
}

type AirLoop struct {
	Handle Handle
	Name   string
	Zones  []Handle
}

// Results is a simulation output store.
type Results interface {
	EnvPeriods() ([]string, error)
	TimeSeries(envPeriod, frequency, variable, key string) ([]float64, error)
}

// Model is the read-only view of a building the translator walks.
type Model interface {
	Name() (string, bool)

	Stories() []*Story
	ThermalZones() []*ThermalZone
	Surfaces() []*Surface
	AirLoops() []*AirLoop

	Story(h Handle) (*Story, bool)
	Space(h Handle) (*Space, bool)
	ThermalZone(h Handle) (*ThermalZone, bool)
	Surface(h Handle) (*Surface, bool)

	// Results returns nil when no simulation output is attached.
	Results() Results
}
