package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
	"github.com/san-kum/linksim/internal/sim"
)

var ErrCorruptLoci = errors.New("storage: malformed loci file")

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
	ID           string             `json:"id"`
	Linkage      string             `json:"linkage"`
	Source       string             `json:"source"`
	Timestamp    time.Time          `json:"timestamp"`
	Iterations   int                `json:"iterations"`
	Subdivisions int                `json:"subdivisions"`
	Joints       []string           `json:"joints"`
	Constraints  []float64          `json:"constraints"`
	Diagnostics  int                `json:"diagnostics"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes one run as <id>/metadata.json and <id>/loci.csv and returns
// the generated id. source names the preset or file the linkage came from.
func (s *Store) Save(source string, lk *linkage.Linkage, cfg sim.Config, result *sim.Result) (string, error) {
	runID := uuid.Must(uuid.NewV7()).String()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	joints := make([]string, 0, lk.Len())
	for _, j := range lk.Joints() {
		joints = append(joints, j.Name())
	}

	meta := RunMetadata{
		ID:           runID,
		Linkage:      lk.Name,
		Source:       source,
		Timestamp:    time.Now().UTC(),
		Iterations:   result.Iterations,
		Subdivisions: cfg.Subdivisions,
		Joints:       joints,
		Constraints:  lk.Constraints(),
		Diagnostics:  len(result.Diagnostics),
		Metrics:      finite(result.Metrics),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeLoci(filepath.Join(runDir, "loci.csv"), joints, result.Trajectory); err != nil {
		return "", err
	}
	return runID, nil
}

// finite drops values JSON cannot carry.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeLoci(path string, joints []string, traj linkage.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"tick"}
	for _, name := range joints {
		header = append(header, name+"_x", name+"_y")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, frame := range traj {
		row := make([]string, 0, 1+2*len(frame))
		row = append(row, strconv.Itoa(i))
		for _, p := range frame {
			row = append(row,
				strconv.FormatFloat(p.X, 'g', -1, 64),
				strconv.FormatFloat(p.Y, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadLoci reads a run's trajectory back, one frame per row.
func (s *Store) LoadLoci(runID string) (linkage.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "loci.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return linkage.Trajectory{}, nil
	}

	traj := make(linkage.Trajectory, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record)%2 != 1 {
			return nil, fmt.Errorf("%w: row %d has %d fields", ErrCorruptLoci, i+1, len(record))
		}
		frame := make(linkage.Frame, 0, len(record)/2)
		for c := 1; c < len(record); c += 2 {
			x, errX := strconv.ParseFloat(record[c], 64)
			y, errY := strconv.ParseFloat(record[c+1], 64)
			if err := errors.Join(errX, errY); err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrCorruptLoci, i+1, err)
			}
			frame = append(frame, geom.Pt(x, y))
		}
		traj = append(traj, frame)
	}
	return traj, nil
}
