package translator

import (
	"strings"

	"airflownet/building"
	"airflownet/element"
	"airflownet/results"
)

const (
	scfmPerFt2     = 0.00508 // 1 scfm/ft^2 in m^3/s per m^2
	returnFraction = 0.9
)

// estimateFlows sets the supply and return flows of the system paths.
func (t *Translator) estimateFlows(m building.Model) {
	if store := m.Results(); store != nil {
		t.measureFlows(m, store)
		return
	}
	t.logger.Warn("Simulation results not available, using 1 scfm/ft^2 to set supply flows")
	for _, tz := range m.ThermalZones() {
		area := 0.0
		for _, h := range tz.Spaces {
			if space, ok := m.Space(h); ok {
				area += space.FloorArea
			}
		}
		if area == 0 {
			t.logger.Warnf("Failed to compute floor area for Zone '%s'", tz.Name)
			continue
		}
		flow := area * scfmPerFt2 * element.RhoAir
		// zones no system serves have no registered paths
		if nr, ok := t.paths.get(tz.Name + " supply"); ok {
			t.data.Paths[nr-1].SetFlow(flow)
		}
		if nr, ok := t.paths.get(tz.Name + " return"); ok {
			t.data.Paths[nr-1].SetFlow(returnFraction * flow)
		}
	}
}

// measureFlows reads the node mass flows of the first environment period.
// TODO: set the supply and return path flows from the measured series.
func (t *Translator) measureFlows(m building.Model, store building.Results) {
	periods, err := store.EnvPeriods()
	if err != nil {
		t.logger.Warnf("Unable to read simulation results: %v", err)
		return
	}
	if len(periods) == 0 {
		t.logger.Warn("No environment periods found in simulation results")
		return
	}
	env := periods[0]
	t.measured = make(map[string][]float64)
	for _, tz := range m.ThermalZones() {
		t.logger.Warn("Zone equipment not yet accounted for.")
		for _, node := range []string{tz.ReturnNode, tz.SupplyNode} {
			if node == "" {
				continue
			}
			key := nodeKey(node)
			values, err := store.TimeSeries(env, results.Hourly, results.SystemNodeMassFlowRate, key)
			if err != nil || len(values) == 0 {
				t.logger.Warnf("Unable to find '%s' for node '%s' in '%s'", results.SystemNodeMassFlowRate, key, env)
				continue
			}
			t.measured[key] = values
		}
	}
}

// nodeKey upper cases ASCII letters the way the results store keys nodes.
func nodeKey(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, name)
}
