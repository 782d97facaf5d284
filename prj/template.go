package prj

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"airflownet/element"
	"airflownet/model"
)

//go:embed template.yaml
var templateYAML []byte

type templateSpec struct {
	Description string `yaml:"description"`
	Terrain     string `yaml:"terrain"`
	Weather     struct {
		WindSpeed     float64 `yaml:"wind_speed"`
		WindDirection float64 `yaml:"wind_direction"`
		Tambient      float64 `yaml:"t_ambient"`
		Pressure      float64 `yaml:"pressure"`
	} `yaml:"weather"`
	Leakage struct {
		Exponent      float64 `yaml:"exponent"`
		ReferenceDP   float64 `yaml:"reference_dp"`
		DischargeCoef float64 `yaml:"discharge_coef"`
	} `yaml:"leakage"`
	AirflowElements []struct {
		Name        string  `yaml:"name"`
		ELA         float64 `yaml:"ela"` // cm^2/m^2
		Description string  `yaml:"description"`
	} `yaml:"airflow_elements"`
	WindProfiles []struct {
		Name         string       `yaml:"name"`
		Coefficients [][2]float64 `yaml:"coefficients"`
	} `yaml:"wind_profiles"`
}

// Template parses the built-in baseline network.
func Template() (*model.Data, error) {
	return ParseTemplate(templateYAML)
}

// ParseTemplate builds a baseline network: no levels, zones or paths, only the
// element and wind profile libraries plus run control defaults.
func ParseTemplate(data []byte) (*model.Data, error) {
	var spec templateSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	n := spec.Leakage.Exponent
	if n <= 0 {
		n = element.DefaultExponent
	}
	cd := spec.Leakage.DischargeCoef
	if cd <= 0 {
		cd = 1.0
	}

	d := &model.Data{
		RunControl: model.RunControl{
			Description: spec.Description,
			Terrain:     spec.Terrain,
			Weather: model.Weather{
				WindSpeed:     spec.Weather.WindSpeed,
				WindDirection: spec.Weather.WindDirection,
				Tambient:      spec.Weather.Tambient,
				Pressure:      spec.Weather.Pressure,
			},
		},
	}
	if d.RunControl.Weather.Tambient == 0 {
		d.RunControl.Weather.Tambient = model.DefaultT0
	}
	if d.RunControl.Weather.Pressure == 0 {
		d.RunControl.Weather.Pressure = model.DefaultPressure
	}

	seen := make(map[string]bool, len(spec.AirflowElements))
	for _, e := range spec.AirflowElements {
		if e.Name == "" {
			return nil, fmt.Errorf("template element %d has no name", len(d.AirflowElements)+1)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("template element %q defined twice", e.Name)
		}
		seen[e.Name] = true
		afe := element.LeakageArea(e.Name, e.ELA*1.0e-4, spec.Leakage.ReferenceDP, n, cd)
		afe.Nr = len(d.AirflowElements) + 1
		afe.Description = e.Description
		d.AirflowElements = append(d.AirflowElements, afe)
	}
	for _, wp := range spec.WindProfiles {
		profile := model.WindProfile{Nr: len(d.WindProfiles) + 1, Name: wp.Name}
		for _, c := range wp.Coefficients {
			profile.Coefficients = append(profile.Coefficients, model.WindCoefficient{Angle: c[0], Cp: c[1]})
		}
		d.WindProfiles = append(d.WindProfiles, profile)
	}
	d.Valid = true
	return d, nil
}
