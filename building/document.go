package building

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// handleSpace namespaces the name-derived handles of document entities.
var handleSpace = uuid.MustParse("6f1c2a7e-3b0d-4f5e-9a51-0c2d8e4b7a10")

var validate = validator.New()

// Spec is the on-disk building document. Entities reference each other by name.
type Spec struct {
	Name     string        `yaml:"name"`
	Results  string        `yaml:"results,omitempty"`
	Stories  []StorySpec   `yaml:"stories" validate:"dive"`
	Zones    []ZoneSpec    `yaml:"zones" validate:"dive"`
	Spaces   []SpaceSpec   `yaml:"spaces" validate:"dive"`
	Surfaces []SurfaceSpec `yaml:"surfaces" validate:"dive"`
	AirLoops []AirLoopSpec `yaml:"air_loops" validate:"dive"`
}

type StorySpec struct {
	Name      string   `yaml:"name" validate:"required"`
	Height    float64  `yaml:"height" validate:"gte=0"`
	Elevation *float64 `yaml:"elevation,omitempty"`
}

type ZoneSpec struct {
	Name       string  `yaml:"name" validate:"required"`
	Volume     float64 `yaml:"volume,omitempty" validate:"gte=0"`
	SupplyNode string  `yaml:"supply_node,omitempty"`
	ReturnNode string  `yaml:"return_node,omitempty"`
}

type SpaceSpec struct {
	Name      string  `yaml:"name" validate:"required"`
	Story     string  `yaml:"story,omitempty"`
	Zone      string  `yaml:"zone,omitempty"`
	Volume    float64 `yaml:"volume,omitempty" validate:"gte=0"`
	FloorArea float64 `yaml:"floor_area,omitempty" validate:"gte=0"`
}

type SurfaceSpec struct {
	Name     string       `yaml:"name" validate:"required"`
	Type     string       `yaml:"type" validate:"required,oneof=Wall Floor RoofCeiling"`
	Boundary string       `yaml:"boundary" validate:"required,oneof=Outdoors Surface Ground Adiabatic"`
	Space    string       `yaml:"space,omitempty"`
	Adjacent string       `yaml:"adjacent,omitempty"`
	Vertices [][3]float64 `yaml:"vertices"`
	Area     *float64     `yaml:"area,omitempty" validate:"omitempty,gte=0"`
	Azimuth  *float64     `yaml:"azimuth,omitempty"` // degrees
}

type AirLoopSpec struct {
	Name  string   `yaml:"name" validate:"required"`
	Zones []string `yaml:"zones"`
}

func handleOf(kind, name string) Handle {
	return uuid.NewSHA1(handleSpace, []byte(kind+"/"+name))
}

// Validate checks the shape of the document. Dangling references are left for
// the translator to report.
func (s *Spec) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed '%s' check", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid building document: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid building document: %w", err)
	}
	for kind, list := range map[string][]string{
		"story":    names(s.Stories, func(v StorySpec) string { return v.Name }),
		"zone":     names(s.Zones, func(v ZoneSpec) string { return v.Name }),
		"space":    names(s.Spaces, func(v SpaceSpec) string { return v.Name }),
		"surface":  names(s.Surfaces, func(v SurfaceSpec) string { return v.Name }),
		"air loop": names(s.AirLoops, func(v AirLoopSpec) string { return v.Name }),
	} {
		seen := make(map[string]bool, len(list))
		for _, n := range list {
			if seen[n] {
				return fmt.Errorf("invalid building document: duplicate %s name %q", kind, n)
			}
			seen[n] = true
		}
	}
	return nil
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}

// Document is a Model backed by a Spec.
type Document struct {
	name        string
	resultsPath string
	results     Results
	stories     []*Story
	zones       []*ThermalZone
	spaces      []*Space
	surfaces    []*Surface
	airLoops    []*AirLoop

	storyIdx   map[Handle]*Story
	zoneIdx    map[Handle]*ThermalZone
	spaceIdx   map[Handle]*Space
	surfaceIdx map[Handle]*Surface
}

// Build validates the spec and resolves its name references.
func (s *Spec) Build() (*Document, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	d := &Document{
		name:        s.Name,
		resultsPath: s.Results,
		storyIdx:    make(map[Handle]*Story, len(s.Stories)),
		zoneIdx:     make(map[Handle]*ThermalZone, len(s.Zones)),
		spaceIdx:    make(map[Handle]*Space, len(s.Spaces)),
		surfaceIdx:  make(map[Handle]*Surface, len(s.Surfaces)),
	}
	storyByName := make(map[string]Handle)
	zoneByName := make(map[string]Handle)
	spaceByName := make(map[string]Handle)
	surfaceByName := make(map[string]Handle)

	for _, st := range s.Stories {
		story := &Story{Handle: handleOf("story", st.Name), Name: st.Name, Height: st.Height}
		if st.Elevation != nil {
			z := *st.Elevation
			story.Elevation = &z
		}
		d.stories = append(d.stories, story)
		d.storyIdx[story.Handle] = story
		storyByName[st.Name] = story.Handle
	}
	for _, zs := range s.Zones {
		zone := &ThermalZone{
			Handle:     handleOf("zone", zs.Name),
			Name:       zs.Name,
			Volume:     zs.Volume,
			SupplyNode: zs.SupplyNode,
			ReturnNode: zs.ReturnNode,
		}
		d.zones = append(d.zones, zone)
		d.zoneIdx[zone.Handle] = zone
		zoneByName[zs.Name] = zone.Handle
	}
	for _, ss := range s.Spaces {
		space := &Space{
			Handle:    handleOf("space", ss.Name),
			Name:      ss.Name,
			Story:     resolve(storyByName, ss.Story, "story", ss.Name),
			Zone:      resolve(zoneByName, ss.Zone, "zone", ss.Name),
			Volume:    ss.Volume,
			FloorArea: ss.FloorArea,
		}
		d.spaces = append(d.spaces, space)
		d.spaceIdx[space.Handle] = space
		spaceByName[ss.Name] = space.Handle
		if zone, ok := d.zoneIdx[space.Zone]; ok {
			zone.Spaces = append(zone.Spaces, space.Handle)
		}
	}
	for _, sf := range s.Surfaces {
		surface := &Surface{
			Handle:   handleOf("surface", sf.Name),
			Name:     sf.Name,
			Type:     sf.Type,
			Boundary: sf.Boundary,
			Space:    resolve(spaceByName, sf.Space, "space", sf.Name),
		}
		for _, v := range sf.Vertices {
			surface.Vertices = append(surface.Vertices, Point3d{X: v[0], Y: v[1], Z: v[2]})
		}
		surface.Area = GrossArea(surface.Vertices)
		if sf.Area != nil {
			surface.Area = *sf.Area
		}
		surface.Azimuth = Azimuth(surface.Vertices)
		if sf.Azimuth != nil {
			surface.Azimuth = *sf.Azimuth * math.Pi / 180.0
		}
		d.surfaces = append(d.surfaces, surface)
		d.surfaceIdx[surface.Handle] = surface
		surfaceByName[sf.Name] = surface.Handle
	}
	// adjacency may point forward
	for i, sf := range s.Surfaces {
		d.surfaces[i].Adjacent = resolve(surfaceByName, sf.Adjacent, "surface", sf.Name)
	}
	for _, al := range s.AirLoops {
		loop := &AirLoop{Handle: handleOf("airloop", al.Name), Name: al.Name}
		for _, zn := range al.Zones {
			if h := resolve(zoneByName, zn, "zone", al.Name); h != Nil {
				loop.Zones = append(loop.Zones, h)
			}
		}
		d.airLoops = append(d.airLoops, loop)
	}
	return d, nil
}

func resolve(byName map[string]Handle, name, kind, owner string) Handle {
	if name == "" {
		return Nil
	}
	h, ok := byName[name]
	if !ok {
		log.WithFields(log.Fields{
			kind:    name,
			"owner": owner,
		}).Debug("unresolved reference in building document")
		return Nil
	}
	return h
}

func Parse(data []byte) (*Document, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing building document: %w", err)
	}
	return s.Build()
}

// Load reads a building document. The results file it names, if any, is not
// opened here; see ResultsPath and SetResults.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading building document: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"path":     path,
		"stories":  len(d.stories),
		"zones":    len(d.zones),
		"surfaces": len(d.surfaces),
		"airLoops": len(d.airLoops),
	}).Info("building document loaded")
	return d, nil
}

func (d *Document) SetResults(r Results) {
	d.results = r
}

func (d *Document) Name() (string, bool) {
	return d.name, d.name != ""
}

func (d *Document) Stories() []*Story { return d.stories }

func (d *Document) ThermalZones() []*ThermalZone { return d.zones }

func (d *Document) Spaces() []*Space { return d.spaces }

func (d *Document) Surfaces() []*Surface { return d.surfaces }

func (d *Document) AirLoops() []*AirLoop { return d.airLoops }

func (d *Document) Results() Results { return d.results }

// ResultsPath is the simulation output file named by the document, if any.
func (d *Document) ResultsPath() string { return d.resultsPath }

func (d *Document) Story(h Handle) (*Story, bool) {
	s, ok := d.storyIdx[h]
	return s, ok
}

func (d *Document) Space(h Handle) (*Space, bool) {
	s, ok := d.spaceIdx[h]
	return s, ok
}

func (d *Document) ThermalZone(h Handle) (*ThermalZone, bool) {
	z, ok := d.zoneIdx[h]
	return z, ok
}

func (d *Document) Surface(h Handle) (*Surface, bool) {
	s, ok := d.surfaceIdx[h]
	return s, ok
}
