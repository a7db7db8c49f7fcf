package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

// CanvasImage rasterizes the canvas with each dot as a dot x dot square.
func CanvasImage(c *Canvas, dot int) *image.Paletted {
	if dot < 1 {
		dot = 1
	}
	img := image.NewPaletted(
		image.Rect(0, 0, c.DotWidth()*dot, c.DotHeight()*dot),
		color.Palette{color.Black, color.White},
	)
	for y := 0; y < c.DotHeight(); y++ {
		for x := 0; x < c.DotWidth(); x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	return img
}

// GIFRecorder collects canvas frames into an animation.
type GIFRecorder struct {
	Dot    int
	Delay  int // per frame, in 100ths of a second
	frames []*image.Paletted
}

func NewGIFRecorder() *GIFRecorder {
	return &GIFRecorder{Dot: 3, Delay: 4}
}

func (r *GIFRecorder) Add(c *Canvas) {
	r.frames = append(r.frames, CanvasImage(c, r.Dot))
}

func (r *GIFRecorder) Len() int { return len(r.frames) }

func (r *GIFRecorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
