package translator

import (
	"fmt"
	"math"

	"airflownet/building"
	"airflownet/model"
	"airflownet/wind"
)

// template wind profiles
const (
	wallProfile = "LowRiseWall"
	roofProfile = "LowRiseRoof"
)

const systemLevel = 1

// translateLevels stacks one level per story. A story without an elevation sits
// at the running sum of the story heights.
func (t *Translator) translateLevels(m building.Model, p Progress) bool {
	stories := m.Stories()
	p.SetPhase(PhaseStories, len(stories))
	total := 0.0
	for _, story := range stories {
		nr := len(t.data.Levels) + 1
		total += story.Height
		z := total
		if story.Elevation != nil {
			z = *story.Elevation
		}
		t.data.Levels = append(t.data.Levels, model.Level{
			Nr:    nr,
			Name:  fmt.Sprintf("<%d>", nr),
			RefHt: z,
			DelHt: story.Height,
		})
		t.levels.set(story.Handle, nr)
		p.Step()
	}
	t.data.RunControl.WindH = total
	if len(t.data.Levels) == 0 {
		t.logger.Error("Failed to find building stories in model, translation aborted")
		return false
	}
	return true
}

func (t *Translator) translateZones(m building.Model, p Progress) bool {
	thermalZones := m.ThermalZones()
	p.SetPhase(PhaseZones, len(thermalZones))
	for _, tz := range thermalZones {
		nr := len(t.data.Zones) + 1
		t.zones.set(tz.Handle, nr)

		volume := tz.Volume
		if volume == 0 {
			for _, h := range tz.Spaces {
				if space, ok := m.Space(h); ok {
					volume += space.Volume
				}
			}
			if volume == 0 {
				t.logger.Warnf("Failed to compute volume for Zone '%s'", tz.Name)
			}
		}

		// a zone spanning stories lands on the first one found
		level := 0
		for _, h := range tz.Spaces {
			space, ok := m.Space(h)
			if !ok || space.Story == building.Nil {
				continue
			}
			level, _ = t.levels.lookup(space.Story)
			break
		}
		if level == 0 {
			t.logger.Errorf("Unable to set level for zone '%s', translation aborted", tz.Name)
			return false
		}

		t.data.Zones = append(t.data.Zones, model.Zone{
			Nr:     nr,
			Name:   fmt.Sprintf("Zone_%d", nr),
			Level:  level,
			Volume: volume,
			T0:     model.DefaultT0,
			Flags:  model.VariablePressure | model.VariableContaminants,
		})
		p.Step()
	}
	return true
}

func (t *Translator) translateSurfaces(m building.Model, afe roleElements, p Progress) bool {
	surfaces := m.Surfaces()
	p.SetPhase(PhaseSurfaces, len(surfaces))
	used := make(map[building.Handle]bool)
	for _, s := range surfaces {
		if !t.translateSurface(m, s, afe, used) {
			return false
		}
		p.Step()
	}
	return true
}

// translateSurface returns false only when the translation must abort.
func (t *Translator) translateSurface(m building.Model, s *building.Surface, afe roleElements,
	used map[building.Handle]bool) bool {
	if used[s.Handle] || s.Boundary == building.Ground {
		return true
	}
	space, ok := m.Space(s.Space)
	if !ok {
		t.logger.Warnf("Unattached surface '%s'", s.Name)
		return true
	}
	tz, ok := m.ThermalZone(space.Zone)
	if !ok {
		t.logger.Warnf("Unattached space '%s'", space.Name)
		return true
	}
	zoneNr, ok := t.zones.lookup(tz.Handle)
	if !ok {
		return true
	}
	zone := t.data.Zones[zoneNr-1]

	switch s.Boundary {
	case building.Outdoors:
		path := t.surfacePath(s, zone)
		path.Role = model.Envelope
		path.From, path.To = zone.Nr, model.Exterior
		path.Element = afe.exterior
		profile := wallProfile
		if s.Type == building.RoofCeiling {
			path.Element = afe.roof
			profile = roofProfile
		}
		pw, _ := t.profiles.lookup(profile)
		path.Wind = &model.WindParams{
			Azimuth:  s.Azimuth * 180.0 / math.Pi,
			Modifier: wind.PressureModifier(t.terrain, t.data.RunControl.WindH),
			Profile:  pw,
		}
		t.surfaces.set(s.Handle, t.addPath(path))

	case building.Adjacent:
		adj, ok := m.Surface(s.Adjacent)
		if !ok {
			t.logger.Errorf("Unable to find adjacent surface for surface '%s'", s.Name)
			return false
		}
		adjSpace, ok := m.Space(adj.Space)
		if !ok {
			t.logger.Errorf("Unattached adjacent surface '%s'", adj.Name)
			return false
		}
		adjZone, ok := m.ThermalZone(adjSpace.Zone)
		if !ok {
			t.logger.Errorf("Unattached adjacent space '%s'", adjSpace.Name)
			return false
		}
		if adjZone.Handle == tz.Handle {
			return true
		}
		other, ok := t.zones.lookup(adjZone.Handle)
		if !ok {
			t.logger.Errorf("Unable to find zone for adjacent space '%s'", adjSpace.Name)
			return false
		}
		path := t.surfacePath(s, zone)
		path.Role = model.Interior
		path.From, path.To = zone.Nr, other
		path.Element = afe.interior
		if s.Type == building.Floor || s.Type == building.RoofCeiling {
			path.Element = afe.floor
		}
		nr := t.addPath(path)
		t.surfaces.set(s.Handle, nr)
		t.surfaces.set(adj.Handle, nr)
		used[adj.Handle] = true
	}
	return true
}

// surfacePath fills in the geometry shared by envelope and interior paths.
func (t *Translator) surfacePath(s *building.Surface, zone model.Zone) model.Path {
	path := model.Path{Level: zone.Level, Mult: s.Area}
	z, ok := building.AverageZ(s.Vertices)
	if !ok {
		t.logger.Warnf("Surface '%s' has no vertices, using zero relative height", s.Name)
		return path
	}
	if level, ok := t.data.Level(zone.Level); ok {
		path.RelHt = z - level.RefHt
	}
	return path
}

func (t *Translator) addPath(p model.Path) int {
	p.Nr = len(t.data.Paths) + 1
	t.data.Paths = append(t.data.Paths, p)
	return p.Nr
}

func (t *Translator) addZone(z model.Zone) int {
	z.Nr = len(t.data.Zones) + 1
	t.data.Zones = append(t.data.Zones, z)
	return z.Nr
}

// translateAirLoops adds an air handling system for every air loop that serves
// a zone: a return and a supply zone plus a supply and return path per served
// zone.
func (t *Translator) translateAirLoops(m building.Model, p Progress) {
	loops := m.AirLoops()
	p.SetPhase(PhaseAirLoops, len(loops))
	for _, loop := range loops {
		if len(loop.Zones) == 0 {
			p.Step()
			continue
		}
		nr := len(t.data.Ahs) + 1
		t.ahs.set(loop.Handle, nr)
		name := fmt.Sprintf("AHS_%d", nr)
		ahs := model.Ahs{Nr: nr, Name: name}
		ahs.ZoneR = t.addZone(model.Zone{
			Name:  name + "(Rec)",
			Level: systemLevel,
			T0:    model.DefaultT0,
			Flags: model.SystemZone | model.VariableContaminants,
		})
		ahs.ZoneS = t.addZone(model.Zone{
			Name:  name + "(Sup)",
			Level: systemLevel,
			T0:    model.DefaultT0,
			Flags: model.SystemZone | model.VariableContaminants,
		})

		for _, h := range loop.Zones {
			tz, ok := m.ThermalZone(h)
			if !ok {
				t.logger.Warnf("Unable to find a zone served by air loop '%s'", loop.Name)
				continue
			}
			zoneNr, ok := t.zones.lookup(h)
			if !ok {
				continue
			}
			supply := t.addPath(model.Path{Role: model.Supply, From: ahs.ZoneS, To: zoneNr, Level: systemLevel, Ahs: nr})
			t.paths.set(tz.Name+" supply", supply)
			ret := t.addPath(model.Path{Role: model.Return, From: zoneNr, To: ahs.ZoneR, Level: systemLevel, Ahs: nr})
			t.paths.set(tz.Name+" return", ret)
		}
		t.data.Ahs = append(t.data.Ahs, ahs)
		p.Step()
	}
}

// closeAirLoops connects each system's return and supply zones to each other
// and to the outdoors.
func (t *Translator) closeAirLoops(p Progress) {
	p.SetPhase(PhaseAhs, len(t.data.Ahs))
	for i := range t.data.Ahs {
		ahs := &t.data.Ahs[i]
		ahs.PathR = t.addPath(model.Path{Role: model.Recirculation, From: ahs.ZoneR, To: ahs.ZoneS, Level: systemLevel})
		t.paths.set(ahs.Name+" recirculation", ahs.PathR)
		ahs.PathS = t.addPath(model.Path{Role: model.OutsideAir, From: model.Exterior, To: ahs.ZoneS, Level: systemLevel})
		t.paths.set(ahs.Name+" oa", ahs.PathS)
		ahs.PathX = t.addPath(model.Path{Role: model.Exhaust, From: ahs.ZoneR, To: model.Exterior, Level: systemLevel})
		t.paths.set(ahs.Name+" exhaust", ahs.PathX)
		p.Step()
	}
}
