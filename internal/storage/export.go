package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/psim/internal/sim"
)

type ExportData struct {
	Simulation string               `json:"simulation"`
	Seed       uint64               `json:"seed"`
	Steps      int                  `json:"steps"`
	Ticks      []uint64             `json:"ticks"`
	Fields     map[string][]float64 `json:"fields"`
	Metrics    map[string]float64   `json:"metrics"`
}

// Export writes a run as indented JSON. Scalar fields export one value per
// tick; vectors and quaternions export their components back to back.
func Export(w io.Writer, simulation string, seed uint64, result *sim.Result) error {
	data := ExportData{
		Simulation: simulation,
		Seed:       seed,
		Steps:      result.StepsTaken,
		Ticks:      result.Ticks,
		Fields:     make(map[string][]float64, len(result.Samples)),
		Metrics:    result.Metrics,
	}

	for name, samples := range result.Samples {
		values := make([]float64, 0, len(samples))
		for _, s := range samples {
			values = append(values, sim.Flatten(s)...)
		}
		data.Fields[name] = values
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, simulation string, seed uint64, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return Export(file, simulation, seed, result)
}
