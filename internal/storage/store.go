package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/juju/errors"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	fieldsFile   = "fields.csv"
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
	Simulation string             `json:"simulation"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       uint64             `json:"seed"`
	Steps      int                `json:"steps"`
	Presets    []string           `json:"presets,omitempty"`
	Fields     []string           `json:"fields"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one run: its metadata, the full configuration it ran with,
// and the recorded field samples with vectors expanded to one column per
// component.
func (s *Store) Save(meta RunMetadata, cfg *config.Configuration, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d_%d", meta.Simulation, meta.Seed, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

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

	if cfg != nil {
		if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
			return "", err
		}
	}

	if err := writeFields(filepath.Join(runDir, fieldsFile), meta.Fields, result); err != nil {
		return "", errors.Annotatef(err, "run %s", meta.ID)
	}
	return meta.ID, nil
}

func writeFields(path string, names []string, result *sim.Result) error {
	csvFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	header := []string{"tick"}
	widths := make([]int, len(names))
	for i, name := range names {
		samples := result.Samples[name]
		if len(samples) == 0 {
			return errors.NotFoundf("samples for field %q", name)
		}
		widths[i] = len(sim.Flatten(samples[0]))
		header = append(header, columns(name, samples[0], widths[i])...)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for k, tick := range result.Ticks {
		row := []string{strconv.FormatUint(tick, 10)}
		for i, name := range names {
			values := sim.Flatten(result.Samples[name][k])
			if len(values) != widths[i] {
				return errors.NotValidf("field %q changed width at tick %d", name, tick)
			}
			for _, v := range values {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func columns(name string, sample any, width int) []string {
	if _, vec := sample.(sim.Vector); !vec && width == 1 {
		return []string{name}
	}
	cols := make([]string, width)
	for i := range cols {
		cols[i] = fmt.Sprintf("%s[%d]", name, i)
	}
	return cols
}

// List returns every stored run, oldest first.
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
			return nil, errors.NotFoundf("run %q", runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Annotatef(err, "run %s metadata", runID)
	}

	return &meta, nil
}

// LoadConfig reads back the configuration a run was made with.
func (s *Store) LoadConfig(runID string) (*config.Configuration, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// Series is a stored run's samples, one column per scalar component.
type Series struct {
	Ticks   []uint64
	Columns []string
	Values  map[string][]float64
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, fieldsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("series for run %q", runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.NotValidf("empty series for run %q", runID)
	}

	header := records[0]
	out := &Series{
		Ticks:   make([]uint64, 0, len(records)-1),
		Columns: header[1:],
		Values:  make(map[string][]float64, len(header)-1),
	}
	for _, record := range records[1:] {
		tick, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, errors.Annotatef(err, "run %s tick", runID)
		}
		out.Ticks = append(out.Ticks, tick)

		for j, col := range out.Columns {
			val, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, errors.Annotatef(err, "run %s column %s", runID, col)
			}
			out.Values[col] = append(out.Values[col], val)
		}
	}
	return out, nil
}
