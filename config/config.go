package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"airflownet/translator"
	"airflownet/wind"
)

const DefaultPath = "conf/config.ini"

type Config struct {
	IncludeHVAC       bool
	LeakageDescriptor string
	LeakageRate       float64 // m^3/h at 75 Pa, used instead of the descriptor when > 0
	Terrain           wind.Terrain

	// steady weather is applied only when wind_speed is set
	SteadyWeather bool
	WindSpeed     float64
	WindDirection float64

	Addr     string
	LogLevel string
}

func Default() Config {
	return Config{
		IncludeHVAC:       true,
		LeakageDescriptor: "Average",
		Terrain:           wind.Default,
		Addr:              ":9000",
		LogLevel:          "info",
	}
}

// Load reads the ini file at path. A missing file gives the defaults.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.WithFields(log.Fields{
			"path": path,
		}).Debug("no config file, using defaults")
		return Default(), nil
	}
	file, err := ini.Load(path)
	if err != nil {
		return Default(), fmt.Errorf("loading config %s: %w", path, err)
	}
	return loadCfg(file)
}

func loadCfg(file *ini.File) (Config, error) {
	def := Default()
	tr := file.Section("translator")
	cfg := Config{
		IncludeHVAC:       tr.Key("include_hvac").MustBool(def.IncludeHVAC),
		LeakageDescriptor: tr.Key("leakage_descriptor").MustString(def.LeakageDescriptor),
		LeakageRate:       tr.Key("leakage_rate").MustFloat64(0),
		Terrain:           def.Terrain,
		Addr:              file.Section("server").Key("addr").MustString(def.Addr),
		LogLevel:          file.Section("log").Key("level").MustString(def.LogLevel),
	}
	if tr.HasKey("terrain") {
		terrain, err := wind.ParseTerrain(tr.Key("terrain").String())
		if err != nil {
			return def, fmt.Errorf("config [translator] terrain: %w", err)
		}
		cfg.Terrain = terrain
	}
	weather := file.Section("weather")
	if weather.HasKey("wind_speed") {
		cfg.SteadyWeather = true
		cfg.WindSpeed = weather.Key("wind_speed").MustFloat64(0)
		cfg.WindDirection = weather.Key("wind_direction").MustFloat64(0)
	}
	return cfg, nil
}

// Leakage selects the leakage mode: an explicit rate wins over the descriptor.
func (c Config) Leakage() translator.Leakage {
	if c.LeakageRate > 0 {
		return translator.LeakageRate(c.LeakageRate)
	}
	return translator.Descriptor(c.LeakageDescriptor)
}

func (c Config) Options() translator.Options {
	return translator.Options{
		IncludeHVAC: c.IncludeHVAC,
		Leakage:     c.Leakage(),
	}
}

// Apply sets the terrain and steady weather of t.
func (c Config) Apply(t *translator.Translator) {
	t.SetTerrain(c.Terrain)
	if c.SteadyWeather {
		t.SetSteadyWeather(c.WindSpeed, c.WindDirection)
	}
}
