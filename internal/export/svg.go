package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
	"github.com/san-kum/linksim/internal/viz"
)

var locusColors = []string{"#00ccff", "#ff6b6b", "#feca57", "#5fd068", "#ff9ff3", "#c8a2ff"}

// LocusSVG draws every moving joint's locus as a closed path, and the bars of
// the linkage at frame tick.
func LocusSVG(lk *linkage.Linkage, traj linkage.Trajectory, tick, width, height int) (string, error) {
	scene, err := viz.NewScene(lk, traj)
	if err != nil {
		return "", err
	}
	tick = min(max(tick, 0), len(traj)-1)

	box := scene.Bounds
	pad := max(box.Width(), box.Height(), 1e-9) * 0.1
	minX, minY := box.MinX-pad, box.MinY-pad
	spanX, spanY := box.Width()+2*pad, box.Height()+2*pad
	scale := min(float64(width)/spanX, float64(height)/spanY)
	project := func(p geom.Point) (float64, float64) {
		return (p.X - minX) * scale, float64(height) - (p.Y-minY)*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<title>%s</title>
`, width, height, width, height, escape(lk.Name))

	color := 0
	for i, j := range lk.Joints() {
		if j.Kind() == linkage.KindAnchor {
			continue
		}
		sb.WriteString(`<path fill="none" stroke-width="1.5" stroke="` + locusColors[color%len(locusColors)] + `" d="`)
		for t, p := range traj.Locus(i) {
			x, y := project(p)
			if t == 0 {
				fmt.Fprintf(&sb, "M%.2f,%.2f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.2f,%.2f", x, y)
			}
		}
		sb.WriteString(" Z\"/>\n")
		color++
	}

	frame := traj[tick]
	sb.WriteString(`<g stroke="#ffffff" stroke-width="2">` + "\n")
	for i, j := range lk.Joints() {
		x0, y0 := project(frame[i])
		for _, name := range j.Parents() {
			p, ok := lk.Lookup(name)
			if !ok {
				continue
			}
			x1, y1 := project(frame[p.ID()])
			fmt.Fprintf(&sb, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", x0, y0, x1, y1)
		}
	}
	sb.WriteString("</g>\n")

	for i, j := range lk.Joints() {
		x, y := project(frame[i])
		fill := "#ffffff"
		if j.Kind() == linkage.KindAnchor {
			fill = "#ff4444"
		}
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="4" fill="%s"><title>%s</title></circle>`+"\n", x, y, fill, escape(j.Name()))
	}

	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(c *viz.Canvas, scale float64) string {
	if c == nil {
		return ""
	}
	dw, dh := c.Dots()
	width, height := float64(dw)*scale, float64(dh)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if c.Lit(x, y) {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
					(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, scale*0.4)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return xmlEscaper.Replace(s) }
