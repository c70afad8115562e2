package gui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/linksim/internal/config"
	"github.com/san-kum/linksim/internal/linkage"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
	ColAnchor  = rl.NewColor(255, 68, 68, 255)
	ColLocus   = rl.NewColor(0, 204, 255, 160)
)

const (
	screenW = 1280
	screenH = 720
)

type App struct {
	Presets  []string
	Selected int
	InMenu   bool

	Name         string
	Linkage      *linkage.Linkage
	Trajectory   linkage.Trajectory
	Subdivisions int
	Tick         int
	Running      bool
	ShowLoci     bool

	Labels   []string
	Params   []float64
	Initial  []float64
	ParamSel int
	Status   string

	Camera rl.Camera2D
	init   *linkage.Linkage
}

func initWindow() {
	rl.InitWindow(screenW, screenH, "linksim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// NewApp opens on the preset menu when start is empty, otherwise loads the
// named preset directly.
func NewApp(start string) (*App, error) {
	app := &App{
		Presets:      config.ListPresets(),
		InMenu:       start == "",
		Subdivisions: 4,
		ShowLoci:     true,
		Camera: rl.Camera2D{
			Offset: rl.NewVector2(screenW/2, screenH/2),
			Zoom:   1,
		},
	}
	if start != "" {
		cfg := config.GetPreset(start)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", start)
		}
		if err := app.Load(cfg); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Run opens a window on the given preset (or the menu) and blocks until it
// is closed.
func Run(start string) error {
	initWindow()
	defer rl.CloseWindow()
	app, err := NewApp(start)
	if err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

// RunLinkage opens a window on an already built linkage.
func RunLinkage(lk *linkage.Linkage, subdivisions int) error {
	initWindow()
	defer rl.CloseWindow()
	app := &App{Subdivisions: subdivisions, ShowLoci: true, Camera: rl.Camera2D{Zoom: 1}}
	if err := app.setLinkage(lk.Name, lk); err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// Load builds cfg and sweeps one rotation period.
func (a *App) Load(cfg *config.Config) error {
	lk, err := cfg.Build()
	if err != nil {
		return err
	}
	if cfg.Simulation.Subdivisions > 0 {
		a.Subdivisions = cfg.Simulation.Subdivisions
	}
	return a.setLinkage(cfg.Name, lk)
}

func (a *App) setLinkage(name string, lk *linkage.Linkage) error {
	a.init = lk.Clone()
	a.Name = name
	a.Labels = lk.ConstraintLabels()
	a.Initial = lk.Constraints()
	a.ParamSel = 0
	if err := a.apply(lk.Constraints()); err != nil {
		return err
	}
	a.fitCamera()
	a.InMenu = false
	a.Running = true
	log.Debug("gui: loaded linkage", "name", name, "frames", len(a.Trajectory))
	return nil
}

// apply re-sweeps a fresh clone with params. On failure the previous
// trajectory stays on screen.
func (a *App) apply(params []float64) error {
	lk := a.init.Clone()
	if err := lk.SetConstraints(params); err != nil {
		return err
	}
	traj, err := lk.Sweep(lk.RotationPeriod(), a.Subdivisions)
	if err != nil {
		return err
	}
	a.Linkage, a.Trajectory, a.Params = lk, traj, params
	a.Tick %= len(traj)
	return nil
}

func (a *App) tune(factor float64) {
	if len(a.Params) == 0 {
		return
	}
	next := slices.Clone(a.Params)
	next[a.ParamSel] *= factor
	if err := a.apply(next); err != nil {
		a.Status = err.Error()
		return
	}
	a.Status = ""
}

// Update handles input for one frame and reports whether to keep running.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}

	if a.InMenu {
		if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
			a.Selected = (a.Selected + 1) % len(a.Presets)
		}
		if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
			a.Selected = (a.Selected - 1 + len(a.Presets)) % len(a.Presets)
		}
		if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
			if err := a.Load(config.GetPreset(a.Presets[a.Selected])); err != nil {
				a.Status = err.Error()
			}
		}
		return true
	}

	if rl.IsKeyPressed(rl.KeyEscape) && a.Presets != nil {
		a.InMenu = true
		a.Status = ""
		return true
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyL) {
		a.ShowLoci = !a.ShowLoci
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.apply(slices.Clone(a.Initial)); err == nil {
			a.Status = ""
		}
	}
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		a.Running = false
		a.Tick = (a.Tick + 1) % len(a.Trajectory)
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		a.Running = false
		a.Tick = (a.Tick - 1 + len(a.Trajectory)) % len(a.Trajectory)
	}

	if len(a.Params) > 0 {
		if rl.IsKeyPressed(rl.KeyTab) {
			a.ParamSel = (a.ParamSel + 1) % len(a.Params)
		}
		step := 1.05
		if rl.IsKeyDown(rl.KeyLeftShift) {
			step = 1.25
		}
		if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
			a.tune(step)
		}
		if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
			a.tune(1 / step)
		}
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.Camera.Zoom = max(a.Camera.Zoom*(1+0.1*wheel), 1)
	}
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		d := rl.GetMouseDelta()
		a.Camera.Target.X -= d.X / a.Camera.Zoom
		a.Camera.Target.Y -= d.Y / a.Camera.Zoom
	}

	if a.Running {
		a.Tick = (a.Tick + 1) % len(a.Trajectory)
	}
	return true
}
