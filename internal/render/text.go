package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// subtitleFace renders caption text centered near the bottom of the frame,
// black outline beneath a white fill for legibility on any background.
type subtitleFace struct {
	face    font.Face
	margin  int // distance of the baseline from the bottom edge
	outline int
}

func newSubtitleFace(canvasHeight int) (*subtitleFace, error) {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(canvasHeight) / 18,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}

	return &subtitleFace{
		face:    face,
		margin:  canvasHeight / 12,
		outline: 2,
	}, nil
}

func (s *subtitleFace) draw(dst *image.RGBA, text string) {
	if text == "" {
		return
	}

	width := font.MeasureString(s.face, text).Ceil()
	x := (dst.Bounds().Dx() - width) / 2
	if x < 0 {
		x = 0
	}
	y := dst.Bounds().Dy() - s.margin

	d := font.Drawer{Dst: dst, Face: s.face}

	d.Src = image.NewUniform(color.Black)
	for dx := -s.outline; dx <= s.outline; dx++ {
		for dy := -s.outline; dy <= s.outline; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d.Dot = fixed.P(x+dx, y+dy)
			d.DrawString(text)
		}
	}

	d.Src = image.NewUniform(color.White)
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
