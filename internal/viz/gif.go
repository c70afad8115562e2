package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
)

const (
	cellW = 8
	cellH = 16
)

var ErrNoFrames = errors.New("viz: nothing recorded")

// Recorder collects canvas snapshots as GIF frames.
type Recorder struct {
	frames []*image.Paletted
	// Delay between frames in hundredths of a second.
	Delay int
}

func NewRecorder() *Recorder { return &Recorder{Delay: 4} }

func (r *Recorder) Len() int { return len(r.frames) }

// Capture rasterizes every lit dot of c as a cellW/2 x cellH/4 block.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH),
		color.Palette{color.Black, color.White})
	dw, dh := c.Dots()
	bw, bh := cellW/2, cellH/4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !c.Lit(x, y) {
				continue
			}
			for py := 0; py < bh; py++ {
				for px := 0; px < bw; px++ {
					img.SetColorIndex(x*bw+px, y*bh+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Encode writes the recorded frames as a looping GIF.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

// RecordScene captures one frame per tick of the scene.
func RecordScene(s *Scene, w, h, trail int) *Recorder {
	r := NewRecorder()
	c := NewCanvas(w, h)
	for t := 0; t < s.Len(); t++ {
		c.Clear()
		s.Draw(c, t, trail)
		r.Capture(c)
	}
	return r
}
