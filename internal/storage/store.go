package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/latctl/internal/lateral"
	"github.com/san-kum/latctl/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	cyclesFile   = "cycles.csv"
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
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Preset      string             `json:"preset,omitempty"`
	Mode        string             `json:"mode"`
	Breakpoints [2]float64         `json:"breakpoints"`
	Methods     [3]string          `json:"methods"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run under a fresh id and returns it. ID, Timestamp, Steps
// and Metrics in meta are filled from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now().UTC()
	meta.Steps = result.Steps
	meta.Metrics = result.Metrics
	if meta.Scenario == "" {
		meta.Scenario = result.Scenario
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCycles(filepath.Join(runDir, cyclesFile), result.Cycles); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var cycleHeader = []string{
	"step", "time", "active", "speed_mps", "steering_angle_deg", "is_mph",
	"torque", "desired_angle_deg", "engaged", "selected", "saturated", "estimated_angle_deg",
	"pid_p", "pid_i", "pid_f",
	"indi_rate_sp", "indi_accel_sp", "indi_accel_error", "indi_delayed_output", "indi_delta",
	"lqr_i", "lqr_output",
	"torque_p", "torque_i", "torque_d", "torque_f",
}

func ff(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func cycleRow(c sim.Cycle) []string {
	d := c.Command.Diagnostics
	return []string{
		strconv.Itoa(c.Step), ff(c.Time), strconv.FormatBool(c.Active), ff(c.SpeedMPS), ff(c.SteeringAngleDeg), strconv.FormatBool(c.IsMph),
		ff(c.Command.Torque), ff(c.Command.DesiredAngleDeg), strconv.FormatBool(d.Active), d.Selected.String(), strconv.FormatBool(d.Saturated), ff(d.SteeringAngleDeg),
		ff(d.PID.P), ff(d.PID.I), ff(d.PID.F),
		ff(d.INDI.RateSetPoint), ff(d.INDI.AccelSetPoint), ff(d.INDI.AccelError), ff(d.INDI.DelayedOutput), ff(d.INDI.Delta),
		ff(d.LQR.I), ff(d.LQR.Output),
		ff(d.Torque.P), ff(d.Torque.I), ff(d.Torque.D), ff(d.Torque.F),
	}
}

func writeCycles(path string, cycles []sim.Cycle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cycleHeader); err != nil {
		return err
	}
	for _, c := range cycles {
		if err := w.Write(cycleRow(c)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadCycles reads back the per-cycle records of a run.
func (s *Store) LoadCycles(runID string) ([]sim.Cycle, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, cyclesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(cycleHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Cycle{}, nil
	}

	cycles := make([]sim.Cycle, 0, len(records)-1)
	for i, rec := range records[1:] {
		c, err := parseCycle(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", cyclesFile, i+2, err)
		}
		cycles = append(cycles, c)
	}
	return cycles, nil
}

type rowParser struct {
	rec []string
	i   int
	err error
}

func (p *rowParser) next() string {
	v := p.rec[p.i]
	p.i++
	return v
}

func (p *rowParser) readFloat() float64 {
	s := p.next()
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", cycleHeader[p.i-1], err)
	}
	return v
}

func (p *rowParser) readBool() bool {
	s := p.next()
	if p.err != nil {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", cycleHeader[p.i-1], err)
	}
	return v
}

func (p *rowParser) readInt() int {
	s := p.next()
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", cycleHeader[p.i-1], err)
	}
	return v
}

func (p *rowParser) readController() lateral.ControllerID {
	s := p.next()
	if p.err != nil || s == lateral.NoController.String() {
		return lateral.NoController
	}
	id, err := lateral.ParseControllerID(s)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", cycleHeader[p.i-1], err)
	}
	return id
}

func parseCycle(rec []string) (sim.Cycle, error) {
	p := &rowParser{rec: rec}
	var c sim.Cycle
	c.Step = p.readInt()
	c.Time = p.readFloat()
	c.Active = p.readBool()
	c.SpeedMPS = p.readFloat()
	c.SteeringAngleDeg = p.readFloat()
	c.IsMph = p.readBool()

	c.Command.Torque = p.readFloat()
	c.Command.DesiredAngleDeg = p.readFloat()
	d := &c.Command.Diagnostics
	d.Active = p.readBool()
	d.Selected = p.readController()
	d.Saturated = p.readBool()
	d.SteeringAngleDeg = p.readFloat()
	d.Output = c.Command.Torque

	d.PID.P, d.PID.I, d.PID.F = p.readFloat(), p.readFloat(), p.readFloat()
	d.INDI.RateSetPoint = p.readFloat()
	d.INDI.AccelSetPoint = p.readFloat()
	d.INDI.AccelError = p.readFloat()
	d.INDI.DelayedOutput = p.readFloat()
	d.INDI.Delta = p.readFloat()
	d.LQR.I, d.LQR.Output = p.readFloat(), p.readFloat()
	d.Torque.P, d.Torque.I, d.Torque.D, d.Torque.F = p.readFloat(), p.readFloat(), p.readFloat(), p.readFloat()

	return c, p.err
}
