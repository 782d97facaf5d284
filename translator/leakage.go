package translator

import (
	"airflownet/element"
)

// leakage roles
const (
	RoleExterior = "exterior"
	RoleInterior = "interior"
	RoleFloor    = "floor"
	RoleRoof     = "roof"
)

// element name suffix per descriptor
var grades = map[string]string{
	"Leaky":   "Leaky",
	"Average": "Avg",
	"Tight":   "Tight",
}

// element name prefix per role
var groups = map[string]string{
	RoleExterior: "ExtWall",
	RoleInterior: "IntWall",
	RoleFloor:    "Floor",
	RoleRoof:     "Roof",
}

// roleElements holds the element index for each surface role, 0 when unresolved.
type roleElements struct {
	exterior int
	interior int
	floor    int
	roof     int
}

// Leakage selects the airflow elements of envelope and interior paths. It is
// one of Descriptor, ElementMap or LeakageRate.
type Leakage interface {
	resolve(t *Translator) roleElements
}

// Descriptor names a template construction grade: Leaky, Average or Tight.
type Descriptor string

func (d Descriptor) resolve(t *Translator) roleElements {
	grade, ok := grades[string(d)]
	if !ok {
		t.logger.Warnf("Unknown leakage descriptor '%s' using 'Average'", string(d))
		grade = grades["Average"]
	}
	get := func(role string) int {
		nr, _ := t.afes.lookup(groups[role] + grade)
		return nr
	}
	return roleElements{
		exterior: get(RoleExterior),
		interior: get(RoleInterior),
		floor:    get(RoleFloor),
		roof:     get(RoleRoof),
	}
}

// ElementMap assigns an element index to each role.
type ElementMap map[string]int

func (m ElementMap) resolve(t *Translator) roleElements {
	get := func(role string) int {
		nr, ok := m[role]
		if !ok || nr < 1 || nr > len(t.data.AirflowElements) {
			t.logger.Warnf("Unable to look up '%s' in leakage element map", role)
			return 0
		}
		return nr
	}
	return roleElements{
		exterior: get(RoleExterior),
		interior: get(RoleInterior),
		floor:    get(RoleFloor),
		roof:     get(RoleRoof),
	}
}

// LeakageRate is an empirical leakage rate, m^3/h at 75 Pa. Interior and floor
// elements get twice the rate. A rate that is not positive falls back to
// Descriptor("Average").
type LeakageRate float64

func (r LeakageRate) resolve(t *Translator) roleElements {
	rate := float64(r)
	if !(rate > 0) {
		t.logger.Warnf("Leakage rate %g is not positive, using 'Average'", rate)
		return Descriptor("Average").resolve(t)
	}
	m := ElementMap{
		RoleExterior: t.addElement("CustomExterior", rate, element.DefaultExponent, element.DefaultPressureDrop),
		RoleRoof:     t.addElement("CustomRoof", rate, element.DefaultExponent, element.DefaultPressureDrop),
		RoleInterior: t.addElement("CustomInterior", 2*rate, element.DefaultExponent, element.DefaultPressureDrop),
		RoleFloor:    t.addElement("CustomFloor", 2*rate, element.DefaultExponent, element.DefaultPressureDrop),
	}
	return m.resolve(t)
}
