// Package storage keeps the telemetry of headless runs on disk: a JSON
// metadata file and a CSV series per run. Structures themselves are not
// saved.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/trusslab/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
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
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	BeamModel  string             `json:"beam_model"`
	Integrator string             `json:"integrator"`
	Material   string             `json:"material"`
	Nodes      int                `json:"nodes"`
	Beams      int                `json:"beams"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// Series is the per-frame telemetry of a run.
type Series struct {
	Times         []float64
	KineticEnergy []float64
	PeakStress    []float64
}

// Save writes a run under a fresh id and returns it. ID, Timestamp, Steps,
// Metrics and Errors of meta are filled from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scene, meta.Timestamp.UnixMilli())
	fill(&meta, result)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	if err := writeSeries(csvFile, result); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func fill(meta *RunMetadata, result *sim.Result) {
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics
	meta.Errors = nil
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
}

func writeSeries(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"time", "kinetic_energy", "peak_stress"}); err != nil {
		return err
	}
	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.KineticEnergy[i], 'g', 8, 64),
			strconv.FormatFloat(result.PeakStress[i], 'g', 8, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every stored run, oldest first. A missing directory is an
// empty store.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	series := &Series{}
	for i, record := range records {
		if i == 0 {
			continue
		}
		var vals [3]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s line %d: %w", runID, i+1, err)
			}
		}
		series.Times = append(series.Times, vals[0])
		series.KineticEnergy = append(series.KineticEnergy, vals[1])
		series.PeakStress = append(series.PeakStress, vals[2])
	}
	return series, nil
}

// ExportData is the single-document JSON form of a run.
type ExportData struct {
	RunMetadata
	Times         []float64 `json:"times"`
	KineticEnergy []float64 `json:"kinetic_energy"`
	PeakStress    []float64 `json:"peak_stress"`
}

// ExportJSON writes meta and the full series of result as one document.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	fill(&meta, result)
	data := ExportData{
		RunMetadata:   meta,
		Times:         result.Times,
		KineticEnergy: result.KineticEnergy,
		PeakStress:    result.PeakStress,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
