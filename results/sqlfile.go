package results

import (
	"database/sql"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	Hourly = "Hourly"

	SystemNodeMassFlowRate = "System Node MassFlowRate"
)

// SqlFile reads report variables out of an EnergyPlus SQLite output file.
type SqlFile struct {
	path string
	db   *sql.DB
}

func Open(path string) (*SqlFile, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening results: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening results %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening results %s: %w", path, err)
	}
	log.WithField("path", path).Info("simulation results attached")
	return &SqlFile{path: path, db: db}, nil
}

func (f *SqlFile) Close() error {
	return f.db.Close()
}

// EnvPeriods lists the environment (run period) names in file order.
func (f *SqlFile) EnvPeriods() ([]string, error) {
	rows, err := f.db.Query("SELECT EnvironmentName FROM EnvironmentPeriods ORDER BY EnvironmentPeriodIndex")
	if err != nil {
		return nil, fmt.Errorf("querying environment periods: %w", err)
	}
	defer rows.Close()

	var periods []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning environment period: %w", err)
		}
		periods = append(periods, name)
	}
	return periods, rows.Err()
}

const timeSeriesQuery = `
SELECT rd.Value
FROM ReportData rd
JOIN ReportDataDictionary rdd ON rd.ReportDataDictionaryIndex = rdd.ReportDataDictionaryIndex
JOIN Time t ON rd.TimeIndex = t.TimeIndex
JOIN EnvironmentPeriods ep ON t.EnvironmentPeriodIndex = ep.EnvironmentPeriodIndex
WHERE upper(ep.EnvironmentName) = upper(?)
  AND rdd.ReportingFrequency = ?
  AND rdd.Name = ?
  AND upper(rdd.KeyValue) = upper(?)
ORDER BY t.TimeIndex`

// TimeSeries returns the values of one report variable, empty when the file
// does not carry it.
func (f *SqlFile) TimeSeries(envPeriod, frequency, variable, key string) ([]float64, error) {
	rows, err := f.db.Query(timeSeriesQuery, envPeriod, frequency, variable, key)
	if err != nil {
		return nil, fmt.Errorf("querying %s for %s: %w", variable, key, err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s for %s: %w", variable, key, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
