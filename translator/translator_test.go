package translator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airflownet/building"
	"airflownet/element"
	"airflownet/model"
	"airflownet/wind"
)

const twoStories = `
name: Two Story
stories:
  - {name: Story 1, height: 3}
  - {name: Story 2, height: 3}
zones:
  - {name: Zone 1, volume: 100, supply_node: Zone 1 Inlet Node, return_node: Zone 1 Return Node}
  - {name: Zone 2, volume: 100, supply_node: Zone 2 Inlet Node}
spaces:
  - {name: Space 1, story: Story 1, zone: Zone 1, floor_area: 30}
  - {name: Space 2, story: Story 2, zone: Zone 2, floor_area: 40}
surfaces:
  - name: Wall 1
    type: Wall
    boundary: Outdoors
    space: Space 1
    area: 20
    vertices: [[0, 0, 0], [10, 0, 0], [10, 0, 2], [0, 0, 2]]
  - name: Wall 2
    type: Wall
    boundary: Outdoors
    space: Space 2
    area: 20
    vertices: [[0, 0, 3], [10, 0, 3], [10, 0, 5], [0, 0, 5]]
`

func parse(t *testing.T, doc string) *building.Document {
	t.Helper()
	d, err := building.Parse([]byte(doc))
	require.NoError(t, err)
	return d
}

func surfaceHandle(t *testing.T, d *building.Document, name string) building.Handle {
	t.Helper()
	for _, s := range d.Surfaces() {
		if s.Name == name {
			return s.Handle
		}
	}
	t.Fatalf("no surface %q", name)
	return building.Nil
}

func countRole(d *model.Data, role model.PathRole) int {
	n := 0
	for _, p := range d.Paths {
		if p.Role == role {
			n++
		}
	}
	return n
}

func TestTranslateTwoStories(t *testing.T) {
	tr := New()
	ok := tr.Translate(parse(t, twoStories), Options{Leakage: Descriptor("Average")})
	require.True(t, ok, tr.Errors())
	assert.True(t, tr.Valid())
	assert.Empty(t, tr.Errors())

	d := tr.Data()
	require.Len(t, d.Levels, 2)
	assert.Equal(t, 3.0, d.Levels[0].RefHt)
	assert.Equal(t, 6.0, d.Levels[1].RefHt)
	assert.Equal(t, "<2>", d.Levels[1].Name)
	assert.Equal(t, 6.0, d.RunControl.WindH)
	assert.Equal(t, `Automatically generated from "Two Story" building model`, d.RunControl.Description)

	require.Len(t, d.Zones, 2)
	for i, z := range d.Zones {
		assert.Equal(t, i+1, z.Level)
		assert.Equal(t, 100.0, z.Volume)
		assert.Equal(t, model.DefaultT0, z.T0)
		assert.True(t, z.Flags.Has(model.VariablePressure))
		assert.False(t, z.Flags.Has(model.SystemZone))
	}
	assert.Equal(t, "Zone_2", d.Zones[1].Name)

	require.Len(t, d.Paths, 2)
	for i, p := range d.Paths {
		assert.Equal(t, model.Envelope, p.Role)
		assert.Equal(t, i+1, p.From)
		assert.Equal(t, model.Exterior, p.To)
		assert.Equal(t, 20.0, p.Mult)
		assert.Equal(t, 2, p.Element) // ExtWallAvg
		require.NotNil(t, p.Wind)
		assert.Equal(t, 4, p.Wind.Profile)
		assert.InDelta(t, wind.PressureModifier(wind.Urban, 6), p.Wind.Modifier, 1e-12)
		assert.InDelta(t, 180.0, p.Wind.Azimuth, 1e-9) // facing south
	}
	assert.InDelta(t, 1.0-3.0, d.Paths[0].RelHt, 1e-12)
	assert.Empty(t, d.Ahs)
	assert.Len(t, tr.SurfaceMap(), 2)
	assert.Len(t, tr.ZoneMap(), 2)
}

func TestTranslateNoStories(t *testing.T) {
	tr := New()
	ok := tr.Translate(parse(t, "name: Empty\n"), DefaultOptions())
	assert.False(t, ok)
	assert.False(t, tr.Valid())
	require.Len(t, tr.Errors(), 1)
	assert.Equal(t, "Failed to find building stories in model, translation aborted", tr.Errors()[0])
	_, ok = tr.String()
	assert.False(t, ok)
}

func TestTranslateExplicitElevation(t *testing.T) {
	doc := `
stories:
  - {name: Ground, height: 2.5, elevation: 0}
  - {name: Upper, height: 3.5, elevation: 2.5}
`
	tr := New()
	require.True(t, tr.Translate(parse(t, doc), Options{}), tr.Errors())
	d := tr.Data()
	require.Len(t, d.Levels, 2)
	assert.Equal(t, 0.0, d.Levels[0].RefHt)
	assert.Equal(t, 2.5, d.Levels[1].RefHt)
	assert.Equal(t, 6.0, d.RunControl.WindH)
	assert.True(t, d.Valid)
}

func TestTranslateZoneWithoutLevel(t *testing.T) {
	doc := `
stories: [{name: S, height: 3}]
zones: [{name: Lost, volume: 10}]
`
	tr := New()
	assert.False(t, tr.Translate(parse(t, doc), DefaultOptions()))
	assert.Contains(t, tr.Errors(), "Unable to set level for zone 'Lost', translation aborted")
}

func TestTranslateZoneVolumeFallback(t *testing.T) {
	doc := `
stories: [{name: S, height: 3}]
zones: [{name: A}, {name: B}]
spaces:
  - {name: A1, story: S, zone: A, volume: 40}
  - {name: A2, story: S, zone: A, volume: 2}
  - {name: B1, story: S, zone: B}
`
	tr := New()
	require.True(t, tr.Translate(parse(t, doc), Options{}))
	d := tr.Data()
	assert.Equal(t, 42.0, d.Zones[0].Volume)
	assert.Equal(t, 0.0, d.Zones[1].Volume)
	assert.Contains(t, tr.Warnings(), "Failed to compute volume for Zone 'B'")
}

func TestReportOrder(t *testing.T) {
	doc := `
stories: [{name: S, height: 3}]
zones: [{name: Lost, volume: 10}]
`
	tr := New()
	require.False(t, tr.Translate(parse(t, doc), Options{Leakage: Descriptor("Drafty")}))
	assert.Equal(t, []Message{
		{Level: log.WarnLevel, Text: "Unknown leakage descriptor 'Drafty' using 'Average'"},
		{Level: log.ErrorLevel, Text: "Unable to set level for zone 'Lost', translation aborted"},
	}, tr.Report())
	assert.False(t, tr.Data().Valid)
}

func TestDescriptorFallback(t *testing.T) {
	m := parse(t, twoStories)

	avg := New()
	want, ok := avg.TranslateToString(m, Options{Leakage: Descriptor("Average")})
	require.True(t, ok)

	bogus := New()
	got, ok := bogus.TranslateToString(m, Options{Leakage: Descriptor("Drafty")})
	require.True(t, ok)

	assert.Equal(t, want, got)
	require.Len(t, bogus.Warnings(), len(avg.Warnings())+1)
	assert.Equal(t, "Unknown leakage descriptor 'Drafty' using 'Average'", bogus.Warnings()[0])
}

func TestDescriptorGrades(t *testing.T) {
	m := parse(t, twoStories)
	for descriptor, nr := range map[string]int{"Leaky": 1, "Average": 2, "Tight": 3} {
		tr := New()
		require.True(t, tr.Translate(m, Options{Leakage: Descriptor(descriptor)}))
		assert.Equal(t, nr, tr.Data().Paths[0].Element, descriptor)
	}
}

const interiorPair = `
stories: [{name: S1, height: 3}, {name: S2, height: 3}]
zones: [{name: Z1, volume: 50}, {name: Z2, volume: 50}]
spaces:
  - {name: P1, story: S1, zone: Z1}
  - {name: P2, story: S2, zone: Z2}
surfaces:
  - {name: A, type: RoofCeiling, boundary: Surface, space: P1, adjacent: B, area: 12,
     vertices: [[0, 0, 3], [4, 0, 3], [4, 3, 3], [0, 3, 3]]}
  - {name: B, type: Floor, boundary: Surface, space: P2, adjacent: A, area: 12,
     vertices: [[0, 0, 3], [0, 3, 3], [4, 3, 3], [4, 0, 3]]}
  - {name: W, type: Wall, boundary: Surface, space: P1, adjacent: V, area: 9}
  - {name: V, type: Wall, boundary: Surface, space: P1, adjacent: W, area: 9}
  - {name: G, type: Floor, boundary: Ground, space: P1, area: 12}
  - {name: Loose, type: Wall, boundary: Outdoors, area: 1}
`

func TestInteriorPairs(t *testing.T) {
	m := parse(t, interiorPair)
	tr := New()
	require.True(t, tr.Translate(m, DefaultOptions()), tr.Errors())

	d := tr.Data()
	require.Equal(t, 1, countRole(d, model.Interior))
	require.Len(t, d.Paths, 1)
	p := d.Paths[0]
	assert.Equal(t, 1, p.From)
	assert.Equal(t, 2, p.To)
	assert.Equal(t, 8, p.Element) // FloorAvg
	assert.Nil(t, p.Wind)
	assert.InDelta(t, 0.0, p.RelHt, 1e-12)

	sm := tr.SurfaceMap()
	assert.Equal(t, 1, sm[surfaceHandle(t, m, "A")])
	assert.Equal(t, 1, sm[surfaceHandle(t, m, "B")])
	_, ok := sm[surfaceHandle(t, m, "W")]
	assert.False(t, ok)
	assert.Contains(t, tr.Warnings(), "Unattached surface 'Loose'")
}

func TestInteriorAdjacencyUnresolved(t *testing.T) {
	doc := `
stories: [{name: S1, height: 3}]
zones: [{name: Z1, volume: 50}]
spaces: [{name: P1, story: S1, zone: Z1}]
surfaces:
  - {name: Half, type: Wall, boundary: Surface, space: P1, adjacent: Missing}
`
	tr := New()
	assert.False(t, tr.Translate(parse(t, doc), DefaultOptions()))
	assert.Equal(t, []string{"Unable to find adjacent surface for surface 'Half'"}, tr.Errors())
}

const served = twoStories + `
air_loops:
  - {name: Loop, zones: [Zone 1, Zone 2]}
  - {name: Idle, zones: []}
`

func TestAirHandlingSystems(t *testing.T) {
	tr := New()
	require.True(t, tr.Translate(parse(t, served), DefaultOptions()), tr.Errors())
	d := tr.Data()

	require.Len(t, d.Ahs, 1)
	ahs := d.Ahs[0]
	assert.Equal(t, "AHS_1", ahs.Name)
	require.Len(t, d.Zones, 4)
	rz, sz := d.Zones[ahs.ZoneR-1], d.Zones[ahs.ZoneS-1]
	assert.Equal(t, "AHS_1(Rec)", rz.Name)
	assert.Equal(t, "AHS_1(Sup)", sz.Name)
	for _, z := range []model.Zone{rz, sz} {
		assert.Equal(t, 1, z.Level)
		assert.True(t, z.Flags.Has(model.SystemZone))
		assert.True(t, z.Flags.Has(model.VariableContaminants))
		assert.False(t, z.Flags.Has(model.VariablePressure))
	}

	assert.Len(t, d.Paths, 2+2*2+3)
	assert.Equal(t, 2, countRole(d, model.Supply))
	assert.Equal(t, 2, countRole(d, model.Return))

	recirc, oa, exhaust := d.Paths[ahs.PathR-1], d.Paths[ahs.PathS-1], d.Paths[ahs.PathX-1]
	assert.Equal(t, model.Recirculation, recirc.Role)
	assert.Equal(t, [2]int{ahs.ZoneR, ahs.ZoneS}, [2]int{recirc.From, recirc.To})
	assert.Equal(t, model.OutsideAir, oa.Role)
	assert.Equal(t, [2]int{model.Exterior, ahs.ZoneS}, [2]int{oa.From, oa.To})
	assert.Equal(t, model.Exhaust, exhaust.Role)
	assert.Equal(t, [2]int{ahs.ZoneR, model.Exterior}, [2]int{exhaust.From, exhaust.To})

	// 1 scfm/ft^2 with 90% return
	supply := 30 * 0.00508 * 1.2041
	for _, p := range d.Paths {
		switch {
		case p.Role == model.Supply && p.To == 1:
			require.NotNil(t, p.Flow)
			assert.InDelta(t, supply, *p.Flow, 1e-12)
		case p.Role == model.Return && p.From == 1:
			require.NotNil(t, p.Flow)
			assert.InDelta(t, 0.9*supply, *p.Flow, 1e-12)
		case p.Role == model.Envelope:
			assert.Nil(t, p.Flow)
		}
	}
	assert.Contains(t, tr.Warnings(), "Simulation results not available, using 1 scfm/ft^2 to set supply flows")
}

func TestHVACExcluded(t *testing.T) {
	tr := New()
	require.True(t, tr.Translate(parse(t, served), Options{}))
	d := tr.Data()
	assert.Empty(t, d.Ahs)
	assert.Len(t, d.Zones, 2)
	assert.Len(t, d.Paths, 2)
}

func TestServedZoneWithoutArea(t *testing.T) {
	doc := strings.Replace(served, "floor_area: 40", "floor_area: 0", 1)
	tr := New()
	require.True(t, tr.Translate(parse(t, doc), DefaultOptions()))
	assert.Contains(t, tr.Warnings(), "Failed to compute floor area for Zone 'Zone 2'")
	for _, p := range tr.Data().Paths {
		if p.Role == model.Supply && p.To == 2 {
			assert.Nil(t, p.Flow)
		}
	}
}

type fakeResults struct {
	periods []string
	series  map[string][]float64
}

func (f *fakeResults) EnvPeriods() ([]string, error) {
	return f.periods, nil
}

func (f *fakeResults) TimeSeries(env, freq, variable, key string) ([]float64, error) {
	if env != f.periods[0] || freq != "Hourly" || variable != "System Node MassFlowRate" {
		return nil, errors.New("unexpected query")
	}
	return f.series[key], nil
}

func TestMeasuredFlows(t *testing.T) {
	m := parse(t, served)
	m.SetResults(&fakeResults{
		periods: []string{"RUN PERIOD 1", "SIZING"},
		series: map[string][]float64{
			"ZONE 1 INLET NODE":  {0.5, 0.25},
			"ZONE 1 RETURN NODE": {0.4, 0.2},
		},
	})
	tr := New()
	require.True(t, tr.Translate(m, DefaultOptions()))

	measured := tr.MeasuredFlows()
	assert.Equal(t, []float64{0.5, 0.25}, measured["ZONE 1 INLET NODE"])
	assert.Equal(t, []float64{0.4, 0.2}, measured["ZONE 1 RETURN NODE"])
	assert.Len(t, measured, 2)

	// measured series are not applied
	for _, p := range tr.Data().Paths {
		assert.Nil(t, p.Flow)
	}
	warnings := tr.Warnings()
	n := 0
	for _, w := range warnings {
		if w == "Zone equipment not yet accounted for." {
			n++
		}
	}
	assert.Equal(t, 2, n)
	assert.NotContains(t, warnings, "Simulation results not available, using 1 scfm/ft^2 to set supply flows")
	assert.Contains(t, warnings, "Unable to find 'System Node MassFlowRate' for node 'ZONE 2 INLET NODE' in 'RUN PERIOD 1'")
}

func TestLeakageRate(t *testing.T) {
	m := parse(t, interiorPair + `
  - {name: Roof, type: RoofCeiling, boundary: Outdoors, space: P2, area: 12}
  - {name: East, type: Wall, boundary: Outdoors, space: P2, area: 9, azimuth: 90}
`)
	tr := New()
	require.True(t, tr.Translate(m, Options{Leakage: LeakageRate(27.1)}), tr.Errors())
	d := tr.Data()

	require.Len(t, d.AirflowElements, 16)
	names := make([]string, 0, 4)
	for _, e := range d.AirflowElements[12:] {
		names = append(names, e.Name)
		assert.Equal(t, element.TypePowerLawTest, e.Type)
	}
	assert.Equal(t, []string{"CustomExterior", "CustomRoof", "CustomInterior", "CustomFloor"}, names)
	want := element.PowerLaw("CustomFloor", 2*27.1, element.DefaultExponent, element.DefaultPressureDrop)
	assert.InDelta(t, want.Turb, d.AirflowElements[15].Turb, 1e-15)

	sm := tr.SurfaceMap()
	floor := d.Paths[sm[surfaceHandle(t, m, "A")]-1]
	roof := d.Paths[sm[surfaceHandle(t, m, "Roof")]-1]
	east := d.Paths[sm[surfaceHandle(t, m, "East")]-1]
	assert.Equal(t, 16, floor.Element)
	assert.Equal(t, 14, roof.Element)
	assert.Equal(t, 5, roof.Wind.Profile)
	assert.Equal(t, 13, east.Element)
	assert.InDelta(t, 90.0, east.Wind.Azimuth, 1e-9)
}

func TestElementMap(t *testing.T) {
	tr := New()
	ok := tr.Translate(parse(t, twoStories), Options{Leakage: ElementMap{
		RoleExterior: 11,
		RoleInterior: 4,
		RoleFloor:    99,
	}})
	require.True(t, ok)
	assert.Equal(t, 11, tr.Data().Paths[0].Element)
	assert.Contains(t, tr.Warnings(), "Unable to look up 'floor' in leakage element map")
	assert.Contains(t, tr.Warnings(), "Unable to look up 'roof' in leakage element map")
}

func TestAddAirflowElement(t *testing.T) {
	tr := New()
	a := tr.AddAirflowElement("Door", 27.1, 0.65, 75)
	assert.Equal(t, 13, a)
	d := tr.Data()
	assert.Equal(t, element.PowerLaw("Door", 27.1, 0.65, 75).Lam, d.AirflowElements[12].Lam)
	assert.Equal(t, 13, d.AirflowElements[12].Nr)
}

func TestLeakageRateNotPositive(t *testing.T) {
	for _, rate := range []float64{0, -27.1} {
		tr := New()
		require.True(t, tr.Translate(parse(t, twoStories), Options{Leakage: LeakageRate(rate)}))
		d := tr.Data()
		assert.Len(t, d.AirflowElements, 12)
		assert.Equal(t, 2, d.Paths[0].Element) // ExtWallAvg
		assert.Len(t, tr.Warnings(), 1)
		assert.Contains(t, tr.Warnings()[0], "is not positive, using 'Average'")
		text, _ := tr.String()
		assert.NotContains(t, text, "NaN")
	}
}

func TestCustomElementInElementMap(t *testing.T) {
	tr := New()
	door := tr.AddAirflowElement("Door", 27.1, 0.65, 75)
	require.Equal(t, 13, door)

	roles := ElementMap{RoleExterior: door, RoleInterior: 4, RoleFloor: 7, RoleRoof: 10}
	require.True(t, tr.Translate(parse(t, twoStories), Options{Leakage: roles}))
	assert.Empty(t, tr.Warnings())
	d := tr.Data()
	require.Len(t, d.AirflowElements, 13)
	assert.Equal(t, "Door", d.AirflowElements[12].Name)
	assert.Equal(t, door, d.Paths[0].Element)

	// run elements follow the caller's
	require.True(t, tr.Translate(parse(t, twoStories), Options{Leakage: LeakageRate(27.1)}))
	d = tr.Data()
	require.Len(t, d.AirflowElements, 17)
	assert.Equal(t, "CustomExterior", d.AirflowElements[13].Name)
	assert.Equal(t, 14, d.Paths[0].Element)

	vent := tr.AddAirflowElement("Vent", 10, 0.5, 4)
	assert.Equal(t, 14, vent)
	d = tr.Data()
	require.Len(t, d.AirflowElements, 18)
	assert.Equal(t, "Vent", d.AirflowElements[13].Name)
	assert.Equal(t, "CustomExterior", d.AirflowElements[14].Name)
	assert.Equal(t, 15, d.AirflowElements[14].Nr)
	assert.Equal(t, 15, d.Paths[0].Element)

	require.True(t, tr.Translate(parse(t, twoStories), Options{Leakage: ElementMap{
		RoleExterior: vent, RoleInterior: 4, RoleFloor: 7, RoleRoof: 10,
	}}))
	d = tr.Data()
	assert.Len(t, d.AirflowElements, 14)
	assert.Equal(t, vent, d.Paths[0].Element)
}

func TestSteadyWeather(t *testing.T) {
	tr := New()
	assert.True(t, tr.SetSteadyWeather(-4.5, 270))
	assert.Equal(t, []string{"Steady state wind speed is negative, using absolute value."}, tr.Warnings())
	assert.Equal(t, 4.5, tr.Data().RunControl.Weather.WindSpeed)

	require.True(t, tr.Translate(parse(t, twoStories), Options{}))
	w := tr.Data().RunControl.Weather
	assert.Equal(t, 4.5, w.WindSpeed)
	assert.Equal(t, 270.0, w.WindDirection)
	assert.Contains(t, tr.Warnings(), "Steady state wind speed is negative, using absolute value.")
}

func TestTerrain(t *testing.T) {
	tr := New()
	tr.SetTerrain(wind.Ocean)
	require.True(t, tr.Translate(parse(t, twoStories), Options{}))
	d := tr.Data()
	assert.Equal(t, "ocean", d.RunControl.Terrain)
	assert.InDelta(t, wind.PressureModifier(wind.Ocean, 6), d.Paths[0].Wind.Modifier, 1e-12)
}

func TestProgress(t *testing.T) {
	var phases []string
	steps := map[string]int{}
	observer := ProgressFunc(func(phase string, step, max int) {
		if step == 0 {
			phases = append(phases, phase)
		}
		steps[phase] = step
		assert.LessOrEqual(t, step, max)
	})
	opts := DefaultOptions()
	opts.Progress = observer.Observer()
	tr := New()
	require.True(t, tr.Translate(parse(t, served), opts))
	assert.Equal(t, []string{PhaseStories, PhaseZones, PhaseSurfaces, PhaseAirLoops, PhaseAhs}, phases)
	assert.Equal(t, 2, steps[PhaseStories])
	assert.Equal(t, 2, steps[PhaseAirLoops])
	assert.Equal(t, 1, steps[PhaseAhs])
}

func TestTranslatorIsReusable(t *testing.T) {
	tr := New()
	require.True(t, tr.Translate(parse(t, served), DefaultOptions()))
	first, _ := tr.String()
	assert.False(t, tr.Translate(parse(t, "name: Empty\n"), DefaultOptions()))
	require.True(t, tr.Translate(parse(t, served), DefaultOptions()))
	second, _ := tr.String()
	assert.Equal(t, first, second)
	assert.Empty(t, tr.Errors())
}

func TestWritePrj(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.prj")
	tr := New()
	assert.ErrorIs(t, tr.WritePrj(path), ErrNotTranslated)

	require.True(t, tr.Translate(parse(t, twoStories), DefaultOptions()))
	require.NoError(t, tr.WritePrj(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want, _ := tr.String()
	assert.Equal(t, want, string(data))

	assert.Error(t, tr.WritePrj(filepath.Join(t.TempDir(), "missing", "out.prj")))
}

func TestModelToPrj(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.prj")
	require.NoError(t, ModelToPrj(parse(t, served), path, DefaultOptions()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AHS_1")

	err = ModelToPrj(parse(t, "name: Empty\n"), path, DefaultOptions())
	assert.ErrorIs(t, err, ErrNotTranslated)
	assert.Contains(t, err.Error(), "Failed to find building stories")
}

func TestMissingTemplate(t *testing.T) {
	tr := NewWithTemplate(nil)
	assert.False(t, tr.Translate(parse(t, twoStories), DefaultOptions()))
	assert.NotEmpty(t, tr.Errors())
}

func TestNodeKey(t *testing.T) {
	assert.Equal(t, "ZONE 1 INLET NODE", nodeKey("Zone 1 Inlet Node"))
	assert.Equal(t, "ÉTAGE_2", nodeKey("Étage_2"))
}
