// Package scenario runs scripted cloth scenes: a sequence of steps, each a
// scene built from a preset or config file, run for a number of frames while
// timed events pull the cloth or release pins.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
)

var ErrInvalidScenario = errors.New("invalid scenario")

type Action string

const (
	// ActionPull queues the scene's pull force along Vector.
	ActionPull Action = "pull"
	// ActionForce queues Vector itself as a force on every point.
	ActionForce Action = "force"
	// ActionRelease unpins the configured pin with index Pin.
	ActionRelease Action = "release"
)

// Event fires once Frame frames have completed. Frame 0 fires before the
// first frame.
type Event struct {
	Frame  int        `yaml:"frame"`
	Action Action     `yaml:"action"`
	Vector [3]float64 `yaml:"vector"`
	Pin    int        `yaml:"pin"`
}

type Step struct {
	Name   string             `yaml:"name"`
	Preset string             `yaml:"preset"`
	Config string             `yaml:"config"`
	Frames int                `yaml:"frames"`
	Params map[string]float64 `yaml:"params"`
	Events []Event            `yaml:"events"`
	SaveAs string             `yaml:"save_as"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`

	// dir resolves relative config paths of steps.
	dir string
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	sc.dir = filepath.Dir(path)
	return sc, nil
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalidScenario, i+1, err)
		}
	}
	return nil
}

func (st *Step) validate() error {
	if st.Preset != "" && st.Config != "" {
		return errors.New("preset and config are exclusive")
	}
	if st.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", st.Frames)
	}
	for name := range st.Params {
		if _, err := config.LookupParam(name); err != nil {
			return err
		}
	}
	for _, e := range st.Events {
		if e.Frame < 0 || e.Frame >= st.Frames {
			return fmt.Errorf("event frame %d outside [0, %d)", e.Frame, st.Frames)
		}
		switch e.Action {
		case ActionPull, ActionForce, ActionRelease:
		default:
			return fmt.Errorf("unknown action %q", e.Action)
		}
	}
	return nil
}

// Label names the step for logs and stored runs.
func (st *Step) Label(i int) string {
	switch {
	case st.SaveAs != "":
		return st.SaveAs
	case st.Name != "":
		return st.Name
	case st.Preset != "":
		return st.Preset
	}
	return fmt.Sprintf("step%d", i+1)
}

// BuildConfig resolves the step's scene config. Without a preset or config
// file the hang preset is used.
func (sc *Scenario) BuildConfig(st *Step) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case st.Config != "":
		path := st.Config
		if !filepath.IsAbs(path) && sc.dir != "" {
			path = filepath.Join(sc.dir, path)
		}
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		name := st.Preset
		if name == "" {
			name = "hang"
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", name)
		}
	}

	names := make([]string, 0, len(st.Params))
	for name := range st.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := cfg.SetParam(name, st.Params[name]); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// Timeline is an Observer firing events against a scene as frames complete.
type Timeline struct {
	scene  *sim.Scene
	events []Event
	next   int
	fired  int
}

func NewTimeline(scene *sim.Scene, events []Event) *Timeline {
	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })
	return &Timeline{scene: scene, events: sorted}
}

// Fire applies every pending event scheduled at or before frame.
func (t *Timeline) Fire(frame int) {
	for t.next < len(t.events) && t.events[t.next].Frame <= frame {
		e := t.events[t.next]
		v := mgl64.Vec3(e.Vector)
		switch e.Action {
		case ActionPull:
			t.scene.Pull(v)
		case ActionForce:
			t.scene.Sim.ApplyForce(v)
		case ActionRelease:
			t.scene.ReleasePin(e.Pin)
		}
		t.next++
		t.fired++
	}
}

func (t *Timeline) OnFrame(frame int, _ float64, _ *cloth.Mesh) { t.Fire(frame) }

// Fired counts events applied so far.
func (t *Timeline) Fired() int { return t.fired }

type StepResult struct {
	Label  string
	Result *sim.Result
	RunID  string
	Events int
}

// Run executes every step in order. When st is non-nil each step is stored
// and its run ID reported. A step that fails to build stops the scenario;
// results of earlier steps are returned with the error.
func Run(ctx context.Context, sc *Scenario, st *storage.Store, log *zap.Logger) ([]StepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]StepResult, 0, len(sc.Steps))

	for i := range sc.Steps {
		step := &sc.Steps[i]
		label := step.Label(i)
		log.Info("scenario step",
			zap.String("scenario", sc.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(sc.Steps)),
			zap.String("label", label),
		)

		cfg, err := sc.BuildConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		scene, err := sim.NewScene(cfg, log)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		timeline := NewTimeline(scene, step.Events)
		scene.AddObserver(timeline)
		timeline.Fire(0)

		result, err := scene.Sim.Run(ctx, step.Frames)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Label: label, Result: result, Events: timeline.Fired()}
		if st != nil {
			mesh := scene.Mesh()
			runID, err := st.Save(label, cfg, mesh.Rows(), mesh.Cols(), result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = runID
		}
		results = append(results, sr)
	}
	return results, nil
}
