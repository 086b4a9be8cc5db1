package advisor

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/pinchpop/backend/internal/game"
)

// Board renders are downscaled from the play canvas; the advisory service
// only needs the layout, not frontend-quality art.
const snapshotScale = 4

var snapshotBackground = color.RGBA{R: 0x16, G: 0x1E, B: 0x2E, A: 0xFF}
var dangerLineColor = color.RGBA{R: 0xE7, G: 0x4C, B: 0x3C, A: 0xFF}

// RenderBoardPNG rasterizes the board the way a player sees it: colored
// discs on a dark field with the danger line marked. The board is drawn at
// canvas resolution and resampled down so bubble edges stay smooth.
func RenderBoardPNG(b *game.Board) ([]byte, error) {
	fullW := int(game.CanvasWidth)
	fullH := int(game.CanvasHeight)
	full := image.NewRGBA(image.Rect(0, 0, fullW, fullH))

	for y := 0; y < fullH; y++ {
		for x := 0; x < fullW; x++ {
			full.SetRGBA(x, y, snapshotBackground)
		}
	}

	// Thick enough to survive the downsample as a full line.
	dangerY := int(game.CellToPixel(game.Cell{Row: game.DangerRow}).Y)
	for y := dangerY; y < dangerY+snapshotScale && y < fullH; y++ {
		for x := 0; x < fullW; x++ {
			full.SetRGBA(x, y, dangerLineColor)
		}
	}

	r := int(game.BubbleDiameter) / 2
	for _, bub := range b.Snapshot() {
		pos := game.CellToPixel(bub.Cell)
		fillCircle(full, int(pos.X), int(pos.Y), r, rgba(bub.Color))
	}

	img := image.NewRGBA(image.Rect(0, 0, fullW/snapshotScale, fullH/snapshotScale))
	xdraw.CatmullRom.Scale(img, img.Bounds(), full, full.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeBoardImage returns the base64 PNG an advice request carries.
func EncodeBoardImage(b *game.Board) (string, error) {
	raw, err := RenderBoardPNG(b)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func rgba(c game.Color) color.RGBA {
	v := c.RGB()
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}
}

func fillCircle(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	bounds := img.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			img.SetRGBA(x, y, col)
		}
	}
}
