package progress

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// Each run adds one columnWidth px wide column to the strip chart; a
// 1 px black separator divides runs.
const columnWidth = 10

var (
	green = color.RGBA{G: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	black = color.RGBA{A: 255}
)

// PaintPNG renders the snapshot into the strip chart at path. Every row
// of the image stands for ten consecutive project strings and turns
// green only when all ten are accepted. A missing file starts a fresh
// chart; an existing one is extended by a separator and a new column, so
// the file accumulates one column per run.
func PaintPNG(path string, snap *Snapshot) error {
	img, err := openChart(path, snap.Len())
	if err != nil {
		return err
	}

	x := img.Bounds().Max.X - columnWidth
	accepted := false
	for count, id := range snap.IDs {
		if count%10 == 0 {
			accepted = snap.States[id]&Accepted != 0
		} else {
			accepted = accepted && snap.States[id]&Accepted != 0
		}
		if count%10 == 9 || count == snap.Len()-1 {
			rowColor := red
			if accepted {
				rowColor = green
			}
			for i := 0; i < columnWidth; i++ {
				img.Set(x+i, count/10, rowColor)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// openChart loads and widens the existing chart, or starts a new one
// sized for rows strings.
func openChart(path string, rows int) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return image.NewRGBA(image.Rect(0, 0, columnWidth, (rows-1)/10+1)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chart: %w", err)
	}

	old, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	bounds := old.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx()+1+columnWidth, bounds.Dy()))
	draw.Draw(img, bounds, old, bounds.Min, draw.Src)
	for y := 0; y < bounds.Dy(); y++ {
		img.Set(bounds.Dx(), y, black)
	}
	return img, nil
}
