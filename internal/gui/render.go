package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
)

// World units are drawn at this many pixels before camera zoom; y is
// flipped so the world y axis points up.
const pixelsPerUnit = 1

func toScreen(p geom.Point) rl.Vector2 {
	return rl.NewVector2(float32(p.X*pixelsPerUnit), float32(-p.Y*pixelsPerUnit))
}

// fitCamera centres the camera on the trajectory bounds and zooms so they
// fill two thirds of the window.
func (a *App) fitCamera() {
	var all []geom.Point
	for _, f := range a.Trajectory {
		all = append(all, f...)
	}
	box, err := geom.BoundingBox(all)
	if err != nil {
		return
	}
	span := max(box.Width(), box.Height(), 1e-6)
	a.Camera.Offset = rl.NewVector2(screenW/2, screenH/2)
	a.Camera.Target = toScreen(geom.Pt((box.MinX+box.MaxX)/2, (box.MinY+box.MaxY)/2))
	a.Camera.Zoom = float32(screenH * 2 / 3 / (span * pixelsPerUnit))
}

func (a *App) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
		return
	}

	rl.BeginMode2D(a.Camera)
	a.drawGrid()
	if a.ShowLoci {
		a.drawLoci()
	}
	a.drawFrame()
	rl.EndMode2D()

	a.drawHUD()
}

func (a *App) drawMenu() {
	rl.DrawText("LINKSIM", 40, 40, 40, ColSelect)
	for i, name := range a.Presets {
		col := ColText
		prefix := "  "
		if i == a.Selected {
			col, prefix = ColSelect, "> "
		}
		rl.DrawText(prefix+name, 60, int32(110+i*32), 24, col)
	}
	rl.DrawText("UP/DOWN select  ENTER open  Q quit", 40, screenH-40, 18, ColTextDim)
	if a.Status != "" {
		rl.DrawText(a.Status, 40, screenH-70, 18, ColAnchor)
	}
}

func (a *App) drawGrid() {
	thick := 1 / a.Camera.Zoom
	for i := -20; i <= 20; i++ {
		v := float32(i)
		rl.DrawLineEx(rl.NewVector2(v, -20), rl.NewVector2(v, 20), thick, ColGrid)
		rl.DrawLineEx(rl.NewVector2(-20, v), rl.NewVector2(20, v), thick, ColGrid)
	}
}

func (a *App) drawLoci() {
	thick := 1.5 / a.Camera.Zoom
	for i, j := range a.Linkage.Joints() {
		if j.Kind() == linkage.KindAnchor {
			continue
		}
		locus := a.Trajectory.Locus(i)
		for t := range locus {
			next := locus[(t+1)%len(locus)]
			rl.DrawLineEx(toScreen(locus[t]), toScreen(next), thick, ColLocus)
		}
	}
}

func (a *App) drawFrame() {
	frame := a.Trajectory[a.Tick]
	thick := 3 / a.Camera.Zoom
	radius := 6 / a.Camera.Zoom

	for i, j := range a.Linkage.Joints() {
		for _, name := range j.Parents() {
			p, ok := a.Linkage.Lookup(name)
			if !ok {
				continue
			}
			rl.DrawLineEx(toScreen(frame[i]), toScreen(frame[p.ID()]), thick, ColAccent)
		}
		if j.Kind() == linkage.KindSlider {
			a.drawRail(j, frame)
		}
	}
	for i, j := range a.Linkage.Joints() {
		col := ColSelect
		if j.Kind() == linkage.KindAnchor {
			col = ColAnchor
		}
		rl.DrawCircleV(toScreen(frame[i]), radius, col)
	}
}

// drawRail sketches the guide line of a slider.
func (a *App) drawRail(j *linkage.Joint, frame linkage.Frame) {
	rail := j.Rail()
	origin, dir := rail.Origin, rail.Direction
	if parents := j.Parents(); len(parents) == 2 {
		if p, ok := a.Linkage.Lookup(parents[1]); ok {
			through := frame[p.ID()]
			if dir == (geom.Point{}) {
				dir = through.Sub(origin)
			}
			origin = through
		}
	}
	n := dir.Norm()
	if n == 0 {
		return
	}
	dir = dir.Scale(10 / n)
	rl.DrawLineEx(toScreen(origin.Sub(dir)), toScreen(origin.Add(dir)), 1/a.Camera.Zoom, ColTextDim)
}

func (a *App) drawHUD() {
	rl.DrawText(a.Name, 20, 20, 28, ColSelect)

	status := "RUNNING"
	if !a.Running {
		status = "PAUSED"
	}
	rl.DrawText(fmt.Sprintf("%s  tick %d/%d  dof %d", status, a.Tick+1, len(a.Trajectory), a.Linkage.DegreesOfFreedom()), 20, 56, 18, ColText)

	for i, v := range a.Params {
		col := ColTextDim
		prefix := "  "
		if i == a.ParamSel {
			col, prefix = ColSelect, "> "
		}
		rl.DrawText(fmt.Sprintf("%s%-10s %.3f", prefix, a.Labels[i], v), screenW-260, int32(20+i*22), 18, col)
	}

	if n := len(a.Linkage.Diagnostics()); n > 0 {
		rl.DrawText(fmt.Sprintf("%d degenerate steps", n), 20, 82, 18, ColAnchor)
	}
	if a.Status != "" {
		rl.DrawText(a.Status, 20, screenH-70, 18, ColAnchor)
	}
	rl.DrawText("SPACE pause  [ ] step  TAB/UP/DOWN tune  R reset  L loci  ESC menu  Q quit", 20, screenH-36, 16, ColTextDim)
}
