package prj

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"airflownet/model"
)

const (
	header     = "ContamW 3.4  0"
	sectionEnd = "-999"
	fileEnd    = "* end project file."
)

func g(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Write renders the network as a project file.
func Write(w io.Writer, d *model.Data) error {
	bw := bufio.NewWriter(w)
	p := printer{w: bw}

	p.line(header)
	p.line(d.RunControl.Description)
	p.runControl(&d.RunControl)
	p.levels(d.Levels)
	p.windProfiles(d.WindProfiles)
	p.elements(d.AirflowElements)
	p.zones(d.Zones)
	p.paths(d.Paths)
	p.ahs(d.Ahs)
	p.line(fileEnd)

	if p.err != nil {
		return p.err
	}
	return bw.Flush()
}

// Print renders the network as a project file string.
func Print(d *model.Data) string {
	var sb strings.Builder
	_ = Write(&sb, d) // strings.Builder never fails
	return sb.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	if len(args) == 0 {
		_, p.err = io.WriteString(p.w, format+"\n")
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) runControl(rc *model.RunControl) {
	p.line("! wind_H  terrain  windspd  winddir  Tambt  barpres")
	p.line("%s %s %s %s %s %s", g(rc.WindH), orDash(rc.Terrain), g(rc.Weather.WindSpeed),
		g(rc.Weather.WindDirection), g(rc.Weather.Tambient), g(rc.Weather.Pressure))
	p.line(sectionEnd)
}

func (p *printer) levels(levels []model.Level) {
	p.line("%d ! levels", len(levels))
	p.line("! nr  refht  delht  name")
	for _, l := range levels {
		p.line("%d %s %s %s", l.Nr, g(l.RefHt), g(l.DelHt), l.Name)
	}
	p.line(sectionEnd)
}

func (p *printer) windProfiles(profiles []model.WindProfile) {
	p.line("%d ! wind pressure profiles", len(profiles))
	p.line("! nr  npts  name")
	for _, wp := range profiles {
		p.line("%d %d %s", wp.Nr, len(wp.Coefficients), wp.Name)
		for _, c := range wp.Coefficients {
			p.line("  %s %s", g(c.Angle), g(c.Cp))
		}
	}
	p.line(sectionEnd)
}

func (p *printer) elements(afes []model.AirflowElement) {
	p.line("%d ! airflow elements", len(afes))
	p.line("! nr  dtype  name")
	p.line("!  lam  turb  expt  dP  Flow  u_P  u_F")
	for _, e := range afes {
		p.line("%d %s %s", e.Nr, e.Type, e.Name)
		p.line("  %s %s %s %s %s %d %d", g(e.Lam), g(e.Turb), g(e.Expt), g(e.DP), g(e.Flow), e.UnitP, e.UnitF)
		p.line("  %s", e.Description)
	}
	p.line(sectionEnd)
}

func (p *printer) zones(zones []model.Zone) {
	p.line("%d ! zones", len(zones))
	p.line("! nr  flags  pl  T0  Vol  name")
	for _, z := range zones {
		p.line("%d %d %d %s %s %s", z.Nr, z.Flags, z.Level, g(z.T0), g(z.Volume), z.Name)
	}
	p.line(sectionEnd)
}

func (p *printer) paths(paths []model.Path) {
	p.line("%d ! flow paths", len(paths))
	p.line("! nr  flags  pzn  pzm  pe  pw  pa  pld  relHt  mult  wazm  wPmod  Fahs")
	for i := range paths {
		path := &paths[i]
		var pw int
		var wazm, wPmod float64
		if path.Wind != nil {
			pw, wazm, wPmod = path.Wind.Profile, path.Wind.Azimuth, path.Wind.Modifier
		}
		fahs := "0"
		if path.Flow != nil {
			fahs = g(*path.Flow)
		}
		p.line("%d %d %d %d %d %d %d %d %s %s %s %s %s", path.Nr, path.Flags(), path.From, path.To,
			path.Element, pw, path.Ahs, path.Level, g(path.RelHt), g(path.Mult), g(wazm), g(wPmod), fahs)
	}
	p.line(sectionEnd)
}

func (p *printer) ahs(systems []model.Ahs) {
	p.line("%d ! simple AHS", len(systems))
	p.line("! nr  zone_r  zone_s  path_r  path_s  path_x  name")
	for _, a := range systems {
		p.line("%d %d %d %d %d %d %s", a.Nr, a.ZoneR, a.ZoneS, a.PathR, a.PathS, a.PathX, a.Name)
	}
	p.line(sectionEnd)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
