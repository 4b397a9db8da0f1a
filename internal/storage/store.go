// Package storage persists closed-loop runs as a metadata file plus a
// CSV of per-sample series.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dkrol/pidlab/internal/config"
	"github.com/dkrol/pidlab/internal/loop"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string              `json:"id"`
	Plant      string              `json:"plant"`
	Timestamp  time.Time           `json:"timestamp"`
	Dt         float64             `json:"dt"`
	Duration   float64             `json:"duration"`
	Setpoint   float64             `json:"setpoint"`
	Integrator string              `json:"integrator"`
	Gains      config.GainsConfig  `json:"gains"`
	Limits     config.LimitsConfig `json:"limits"`
	Metrics    map[string]float64  `json:"metrics"`
}

// Series is the per-sample data of a stored run.
type Series struct {
	Times        []float64
	Setpoints    []float64
	Measurements []float64
	Controls     []float64
	PTerms       []float64
	ITerms       []float64
	DTerms       []float64
}

var seriesHeader = []string{"time", "setpoint", "measurement", "control", "p", "i", "d"}

func (s *Store) Save(cfg *config.Config, result *loop.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Plant, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Plant:      cfg.Plant,
		Timestamp:  time.Now(),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Setpoint:   cfg.Setpoint,
		Integrator: cfg.Integrator,
		Gains:      cfg.Gains,
		Limits:     cfg.Limits,
		Metrics:    result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "series.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(seriesHeader); err != nil {
		return "", err
	}

	for i := range result.Times {
		row := []string{
			formatFloat(result.Times[i]),
			formatFloat(result.Setpoints[i]),
			formatFloat(result.Measurements[i]),
			formatFloat(result.Controls[i]),
			formatFloat(result.PTerms[i]),
			formatFloat(result.ITerms[i]),
			formatFloat(result.DTerms[i]),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	csvPath := filepath.Join(s.baseDir, runID, "series.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &Series{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < len(seriesHeader) {
			continue
		}

		vals := make([]float64, len(seriesHeader))
		ok := true
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}

		series.Times = append(series.Times, vals[0])
		series.Setpoints = append(series.Setpoints, vals[1])
		series.Measurements = append(series.Measurements, vals[2])
		series.Controls = append(series.Controls, vals[3])
		series.PTerms = append(series.PTerms, vals[4])
		series.ITerms = append(series.ITerms, vals[5])
		series.DTerms = append(series.DTerms, vals[6])
	}

	return series, nil
}
