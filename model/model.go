package model

// Airflow network data, numbered the way the PRJ file numbers it: every list is
// 1-based and Nr == position+1.

type Level struct {
	Nr    int
	Name  string
	RefHt float64 // reference height, m
	DelHt float64 // floor to floor height, m
}

type ZoneFlags uint8

const (
	VariablePressure ZoneFlags = 1 << iota
	VariableContaminants
	SystemZone
)

func (f ZoneFlags) Has(flag ZoneFlags) bool {
	return f&flag != 0
}

type Zone struct {
	Nr     int
	Name   string
	Level  int
	Volume float64 // m^3
	T0     float64 // K
	Flags  ZoneFlags
}

// PathRole is the one thing a path is. Flags written to the project file are
// derived from it.
type PathRole int

const (
	Envelope PathRole = iota + 1
	Interior
	Supply
	Return
	Recirculation
	OutsideAir
	Exhaust
)

var pathRoleNames = map[PathRole]string{
	Envelope:      "envelope",
	Interior:      "interior",
	Supply:        "supply",
	Return:        "return",
	Recirculation: "recirculation",
	OutsideAir:    "outside-air",
	Exhaust:       "exhaust",
}

func (r PathRole) String() string {
	if name, ok := pathRoleNames[r]; ok {
		return name
	}
	return "unknown"
}

// IsSystem reports whether the path belongs to an air handling system.
func (r PathRole) IsSystem() bool {
	return r >= Supply
}

type PathFlags uint16

const (
	WindPressure PathFlags = 1 << iota
	SystemPath
	RecirculationPath
	OutsideAirPath
	ExhaustPath
)

type WindParams struct {
	Azimuth  float64 // degrees clockwise from north
	Modifier float64
	Profile  int
}

type Path struct {
	Nr      int
	Role    PathRole
	From    int // zone index or Exterior
	To      int
	Level   int
	RelHt   float64
	Mult    float64
	Element int
	Wind    *WindParams
	Ahs     int
	Flow    *float64 // fixed AHS flow rate, kg/s
}

func (p *Path) Flags() PathFlags {
	var f PathFlags
	switch p.Role {
	case Envelope:
		if p.Wind != nil {
			f |= WindPressure
		}
	case Supply, Return:
		f |= SystemPath
	case Recirculation:
		f |= RecirculationPath
	case OutsideAir:
		f |= OutsideAirPath
	case Exhaust:
		f |= ExhaustPath
	}
	return f
}

func (p *Path) SetFlow(flow float64) {
	p.Flow = &flow
}

type AirflowElement struct {
	Nr          int     `json:"nr"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Lam         float64 `json:"lam"`  // laminar flow coefficient
	Turb        float64 `json:"turb"` // turbulent flow coefficient
	Expt        float64 `json:"expt"` // flow exponent
	DP          float64 `json:"dP"`   // reference pressure drop, Pa
	Flow        float64 `json:"flow"` // reference mass flow, kg/s
	UnitP       int     `json:"u_P"`
	UnitF       int     `json:"u_F"`
}

type Ahs struct {
	Nr    int
	Name  string
	ZoneR int // return zone
	ZoneS int // supply zone
	PathR int // recirculation path
	PathS int // outside air path
	PathX int // exhaust path
}

type WindProfile struct {
	Nr           int
	Name         string
	Coefficients []WindCoefficient
}

type WindCoefficient struct {
	Angle float64 // degrees
	Cp    float64
}

type Weather struct {
	WindSpeed     float64 // m/s
	WindDirection float64 // degrees
	Tambient      float64 // K
	Pressure      float64 // Pa
}

type RunControl struct {
	Description string
	WindH       float64 // wind reference height, m
	Terrain     string
	Weather     Weather
}

type Data struct {
	RunControl      RunControl
	Levels          []Level
	Zones           []Zone
	Paths           []Path
	AirflowElements []AirflowElement
	Ahs             []Ahs
	WindProfiles    []WindProfile
	Valid           bool
}

// Clone returns a deep copy, so a baseline can be reused for many runs.
func (d *Data) Clone() *Data {
	c := *d
	c.Levels = append([]Level(nil), d.Levels...)
	c.Zones = append([]Zone(nil), d.Zones...)
	c.AirflowElements = append([]AirflowElement(nil), d.AirflowElements...)
	c.Ahs = append([]Ahs(nil), d.Ahs...)
	c.Paths = make([]Path, len(d.Paths))
	for i, p := range d.Paths {
		if p.Wind != nil {
			w := *p.Wind
			p.Wind = &w
		}
		if p.Flow != nil {
			f := *p.Flow
			p.Flow = &f
		}
		c.Paths[i] = p
	}
	c.WindProfiles = make([]WindProfile, len(d.WindProfiles))
	for i, wp := range d.WindProfiles {
		wp.Coefficients = append([]WindCoefficient(nil), wp.Coefficients...)
		c.WindProfiles[i] = wp
	}
	return &c
}

func (d *Data) Zone(nr int) (*Zone, bool) {
	if nr < 1 || nr > len(d.Zones) {
		return nil, false
	}
	return &d.Zones[nr-1], true
}

func (d *Data) Level(nr int) (*Level, bool) {
	if nr < 1 || nr > len(d.Levels) {
		return nil, false
	}
	return &d.Levels[nr-1], true
}

func (d *Data) Path(nr int) (*Path, bool) {
	if nr < 1 || nr > len(d.Paths) {
		return nil, false
	}
	return &d.Paths[nr-1], true
}
