package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"airflownet/building"
	"airflownet/results"
	"airflownet/translator"
	"airflownet/wind"
)

type translateOptions struct {
	output        string
	noHVAC        bool
	leakage       string
	leakageRate   float64
	resultsPath   string
	windSpeed     float64
	windDirection float64
	terrain       string
}

func newTranslateCmd(root *rootOptions) *cobra.Command {
	opts := &translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <model.yaml>",
		Short: "Translate a building document into a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, root, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output project file, - for stdout (default <model>.prj)")
	f.BoolVar(&opts.noHVAC, "no-hvac", false, "Do not translate air loops")
	f.StringVar(&opts.leakage, "leakage", "", "Leakage descriptor: Leaky, Average or Tight")
	f.Float64Var(&opts.leakageRate, "leakage-rate", 0, "Empirical leakage rate, m^3/h at 75 Pa")
	f.StringVar(&opts.resultsPath, "results", "", "EnergyPlus SQLite output to read node flows from")
	f.Float64Var(&opts.windSpeed, "wind-speed", 0, "Steady state wind speed, m/s")
	f.Float64Var(&opts.windDirection, "wind-direction", 0, "Steady state wind direction, degrees")
	f.StringVar(&opts.terrain, "terrain", "", "Terrain class: ocean, open, rural, urban or city")
	return cmd
}

func runTranslate(cmd *cobra.Command, root *rootOptions, opts *translateOptions, modelPath string) error {
	cfg := root.cfg
	f := cmd.Flags()
	if f.Changed("no-hvac") {
		cfg.IncludeHVAC = !opts.noHVAC
	}
	if f.Changed("leakage") {
		cfg.LeakageDescriptor = opts.leakage
		cfg.LeakageRate = 0
	}
	if f.Changed("leakage-rate") {
		cfg.LeakageRate = opts.leakageRate
	}
	if f.Changed("wind-speed") {
		cfg.SteadyWeather = true
		cfg.WindSpeed = opts.windSpeed
		cfg.WindDirection = opts.windDirection
	}
	if f.Changed("terrain") {
		terrain, err := wind.ParseTerrain(opts.terrain)
		if err != nil {
			return err
		}
		cfg.Terrain = terrain
	}

	doc, err := building.Load(modelPath)
	if err != nil {
		return err
	}
	resultsPath := doc.ResultsPath()
	if opts.resultsPath != "" {
		resultsPath = opts.resultsPath
	} else if resultsPath != "" && !filepath.IsAbs(resultsPath) {
		resultsPath = filepath.Join(filepath.Dir(modelPath), resultsPath)
	}
	if resultsPath != "" {
		sqlFile, err := results.Open(resultsPath)
		if err != nil {
			return err
		}
		defer sqlFile.Close()
		doc.SetResults(sqlFile)
	}

	t := translator.New()
	cfg.Apply(t)
	if !t.Translate(doc, cfg.Options()) {
		return fmt.Errorf("%w: %s", translator.ErrNotTranslated, strings.Join(t.Errors(), "; "))
	}

	output := opts.output
	if output == "-" {
		text, ok := t.String()
		if !ok {
			return errors.New("translation has no output")
		}
		_, err := fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".prj"
	}
	if err := t.WritePrj(output); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"model":    modelPath,
		"output":   output,
		"warnings": len(t.Warnings()),
	}).Info("translated")
	return nil
}
