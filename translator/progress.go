package translator

// translation phases, in the order they run
const (
	PhaseStories  = "Translating Stories"
	PhaseZones    = "Translating Zones"
	PhaseSurfaces = "Translating Surfaces"
	PhaseAirLoops = "Translating AirLoops"
	PhaseAhs      = "Connecting AHS to zones"
)

// Progress observes a translation. It is called synchronously from Translate
// and must return promptly.
type Progress interface {
	// SetPhase starts a phase of max steps.
	SetPhase(name string, max int)
	Step()
}

type noProgress struct{}

func (noProgress) SetPhase(string, int) {}

func (noProgress) Step() {}

// ProgressFunc adapts a function that receives every phase change and step.
type ProgressFunc func(phase string, step, max int)

type funcProgress struct {
	fn    ProgressFunc
	phase string
	step  int
	max   int
}

func (p *funcProgress) SetPhase(name string, max int) {
	p.phase, p.step, p.max = name, 0, max
	p.fn(p.phase, p.step, p.max)
}

func (p *funcProgress) Step() {
	p.step++
	p.fn(p.phase, p.step, p.max)
}

// Observer returns a Progress that forwards to f.
func (f ProgressFunc) Observer() Progress {
	return &funcProgress{fn: f}
}
