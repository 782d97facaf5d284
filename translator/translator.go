package translator

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"airflownet/building"
	"airflownet/element"
	"airflownet/model"
	"airflownet/prj"
	"airflownet/wind"
)

type Options struct {
	IncludeHVAC bool
	// Leakage defaults to Descriptor("Average").
	Leakage  Leakage
	Progress Progress
}

// DefaultOptions translates HVAC with average construction leakage.
func DefaultOptions() Options {
	return Options{IncludeHVAC: true, Leakage: Descriptor("Average")}
}

type steadyWeather struct {
	speed     float64
	direction float64
	flipped   bool
}

// Translator turns a building model into an airflow network. It is not safe
// for concurrent use; run one per goroutine.
type Translator struct {
	baseline *model.Data
	data     *model.Data
	report   *Report
	logger   *log.Logger
	terrain  wind.Terrain
	weather  *steadyWeather
	valid    bool

	levels   *table[building.Handle]
	zones    *table[building.Handle]
	surfaces *table[building.Handle]
	ahs      *table[building.Handle]
	paths    *table[string]
	afes     *table[string]
	profiles *table[string]

	measured map[string][]float64
	// elements added by the caller, kept across translations
	custom []model.AirflowElement
}

// New returns a translator over the built-in network template.
func New() *Translator {
	d, err := prj.Template()
	t := NewWithTemplate(d)
	if err != nil {
		log.WithFields(log.Fields{
			"err": err,
		}).Error("network template failed to load")
	}
	return t
}

// NewWithTemplate returns a translator over baseline. The baseline is never
// modified; every translation starts from a copy of it.
func NewWithTemplate(baseline *model.Data) *Translator {
	r := &Report{}
	t := &Translator{
		baseline: baseline,
		report:   r,
		logger:   newLogger(r),
		terrain:  wind.Default,
	}
	t.reset()
	return t
}

func (t *Translator) reset() {
	t.report.reset()
	t.valid = false
	t.measured = nil
	if t.baseline != nil {
		t.data = t.baseline.Clone()
	} else {
		t.data = &model.Data{}
	}
	t.data.Valid = false
	t.data.AirflowElements = append(t.data.AirflowElements, t.custom...)
	t.levels = newTable[building.Handle]("levelMap", t.logger)
	t.zones = newTable[building.Handle]("zoneMap", t.logger)
	t.surfaces = newTable[building.Handle]("surfaceMap", t.logger)
	t.ahs = newTable[building.Handle]("ahsMap", t.logger)
	t.paths = newTable[string]("pathMap", t.logger)
	t.afes = newTable[string]("afeMap", t.logger)
	t.profiles = newTable[string]("windProfileMap", t.logger)
	for _, e := range t.data.AirflowElements {
		t.afes.set(e.Name, e.Nr)
	}
	for _, wp := range t.data.WindProfiles {
		t.profiles.set(wp.Name, wp.Nr)
	}
}

// Translate builds the network for m. It returns false, and records an error,
// when the translation had to be aborted.
func (t *Translator) Translate(m building.Model, opts Options) bool {
	t.reset()
	if t.baseline == nil || !t.baseline.Valid {
		t.logger.Error("Network template not loaded, translation aborted")
		return false
	}
	progress := opts.Progress
	if progress == nil {
		progress = noProgress{}
	}
	leakage := opts.Leakage
	if leakage == nil {
		leakage = Descriptor("Average")
	}
	start := time.Now()

	t.data.RunControl.Description = description(m)
	t.data.RunControl.Terrain = t.terrain.String()
	afe := leakage.resolve(t)

	if !t.translateLevels(m, progress) {
		return false
	}
	if !t.translateZones(m, progress) {
		return false
	}
	if !t.translateSurfaces(m, afe, progress) {
		return false
	}
	if opts.IncludeHVAC {
		t.translateAirLoops(m, progress)
		t.closeAirLoops(progress)
		t.estimateFlows(m)
	}
	t.applyWeather()
	t.valid = true
	t.data.Valid = true

	log.WithFields(log.Fields{
		"levels":   len(t.data.Levels),
		"zones":    len(t.data.Zones),
		"paths":    len(t.data.Paths),
		"ahs":      len(t.data.Ahs),
		"warnings": len(t.report.Warnings()),
		"elapsed":  time.Since(start),
	}).Info("translation finished")
	return true
}

func description(m building.Model) string {
	if name, ok := m.Name(); ok {
		return fmt.Sprintf("Automatically generated from \"%s\" building model", name)
	}
	return "Automatically generated building model"
}

// AddAirflowElement derives a power-law element from a leakage rate flow (m^3/h)
// at pressure drop dP (Pa) and adds it to the current network and to every
// later translation, right after the template elements. It returns the
// element's index, which an ElementMap can refer to.
func (t *Translator) AddAirflowElement(name string, flow, n, dP float64) int {
	afe := element.PowerLaw(name, flow, n, dP)
	afe.Nr = len(t.custom) + 1
	if t.baseline != nil {
		afe.Nr += len(t.baseline.AirflowElements)
	}
	t.custom = append(t.custom, afe)
	t.insertElement(afe)
	return afe.Nr
}

// insertElement places afe at its index, ahead of the elements derived during
// the current run, and shifts those and the paths using them.
func (t *Translator) insertElement(afe model.AirflowElement) {
	i := afe.Nr - 1
	els := make([]model.AirflowElement, 0, len(t.data.AirflowElements)+1)
	els = append(els, t.data.AirflowElements[:i]...)
	els = append(els, afe)
	for _, e := range t.data.AirflowElements[i:] {
		e.Nr++
		els = append(els, e)
	}
	t.data.AirflowElements = els
	for j := range t.data.Paths {
		if t.data.Paths[j].Element >= afe.Nr {
			t.data.Paths[j].Element++
		}
	}
	for _, e := range els[i:] {
		t.afes.set(e.Name, e.Nr)
	}
}

// addElement appends an element that lives for the current run only.
func (t *Translator) addElement(name string, flow, n, dP float64) int {
	afe := element.PowerLaw(name, flow, n, dP)
	afe.Nr = len(t.data.AirflowElements) + 1
	t.data.AirflowElements = append(t.data.AirflowElements, afe)
	t.afes.set(name, afe.Nr)
	return afe.Nr
}

// SetSteadyWeather sets the steady state wind of this and every later
// translation. A negative speed is replaced by its absolute value.
func (t *Translator) SetSteadyWeather(speed, direction float64) bool {
	w := &steadyWeather{speed: speed, direction: direction}
	if speed < 0 {
		w.speed = -speed
		w.flipped = true
	}
	t.weather = w
	t.applyWeather()
	return true
}

func (t *Translator) applyWeather() {
	if t.weather == nil {
		return
	}
	if t.weather.flipped {
		t.logger.Warn("Steady state wind speed is negative, using absolute value.")
	}
	t.data.RunControl.Weather.WindSpeed = t.weather.speed
	t.data.RunControl.Weather.WindDirection = t.weather.direction
}

// SetTerrain selects the wind profile used by later translations.
func (t *Translator) SetTerrain(terrain wind.Terrain) {
	t.terrain = terrain
}

func (t *Translator) Valid() bool {
	return t.valid
}

func (t *Translator) Warnings() []string {
	return t.report.Warnings()
}

func (t *Translator) Errors() []string {
	return t.report.Errors()
}

func (t *Translator) Report() []Message {
	return t.report.Messages()
}

// SurfaceMap maps each translated surface to its path. Both sides of an
// interior pair map to the same path.
func (t *Translator) SurfaceMap() map[building.Handle]int {
	return t.surfaces.snapshot()
}

func (t *Translator) ZoneMap() map[building.Handle]int {
	return t.zones.snapshot()
}

// Data returns a copy of the current network.
func (t *Translator) Data() *model.Data {
	return t.data.Clone()
}

// MeasuredFlows returns the supply and return node mass flow series read from
// simulation results during the last translation, keyed by node name.
func (t *Translator) MeasuredFlows() map[string][]float64 {
	out := make(map[string][]float64, len(t.measured))
	for k, v := range t.measured {
		out[k] = append([]float64(nil), v...)
	}
	return out
}

// String renders the network of a valid translation.
func (t *Translator) String() (string, bool) {
	if !t.valid {
		return "", false
	}
	return prj.Print(t.data), true
}

func (t *Translator) TranslateToString(m building.Model, opts Options) (string, bool) {
	if !t.Translate(m, opts) {
		return "", false
	}
	return t.String()
}

var ErrNotTranslated = errors.New("no valid translation")

// WritePrj writes the network of a valid translation to path.
func (t *Translator) WritePrj(path string) error {
	if !t.valid {
		return ErrNotTranslated
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing project file: %w", err)
	}
	if err := prj.Write(f, t.data); err != nil {
		f.Close()
		return fmt.Errorf("writing project file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing project file %s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"path": path,
	}).Info("project file written")
	return nil
}

// ModelToPrj translates m with a fresh translator and writes the result to path.
func ModelToPrj(m building.Model, path string, opts Options) error {
	t := New()
	if !t.Translate(m, opts) {
		return fmt.Errorf("%w: %s", ErrNotTranslated, strings.Join(t.Errors(), "; "))
	}
	return t.WritePrj(path)
}
