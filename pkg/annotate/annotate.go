// Package annotate draws detection overlays (bounding rectangles and text
// polygons) onto images and writes the result to disk.
//
// Prediction services return box coordinates normalized to [0,1]; PixelRect
// maps those into pixel space for the image being annotated. Face rectangles
// and OCR polygons arrive in pixels already and are drawn as-is.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Overlay colors used by the commands.
var (
	Magenta    = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	LightGreen = color.RGBA{R: 144, G: 238, B: 144, A: 255}
	Cyan       = color.RGBA{R: 0, G: 255, B: 255, A: 255}
)

// jpegQuality for encoded output.
const jpegQuality = 90

// Open decodes the image at path into a mutable RGBA canvas.
func Open(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)
	return canvas, nil
}

// Save encodes img to path, choosing the format from the extension
// (.png for PNG, anything else JPEG).
func Save(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output image: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		if err := png.Encode(f, img); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	default:
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}
	return nil
}

// PixelRect maps a normalized box (left, top, width, height in [0,1]) into a
// pixel-space rectangle within bounds. (0,0) is the top-left of the image.
func PixelRect(left, top, width, height float64, bounds image.Rectangle) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	x0 := bounds.Min.X + int(left*w)
	y0 := bounds.Min.Y + int(top*h)
	x1 := bounds.Min.X + int((left+width)*w)
	y1 := bounds.Min.Y + int((top+height)*h)
	return image.Rect(x0, y0, x1, y1).Intersect(bounds)
}

// DefaultLineWidth scales the outline thickness to the image width, so the
// overlay stays visible on large images without swamping small ones.
func DefaultLineWidth(bounds image.Rectangle) int {
	w := bounds.Dx() / 100
	if w < 1 {
		w = 1
	}
	return w
}

// Outline draws the border of rect onto img with the given color and
// thickness. The thickness grows inward from the rectangle edge.
func Outline(img *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return
	}
	if thickness < 1 {
		thickness = 1
	}

	for t := 0; t < thickness; t++ {
		inner := image.Rect(rect.Min.X+t, rect.Min.Y+t, rect.Max.X-t, rect.Max.Y-t)
		if inner.Empty() {
			return
		}
		for x := inner.Min.X; x < inner.Max.X; x++ {
			img.Set(x, inner.Min.Y, col)
			img.Set(x, inner.Max.Y-1, col)
		}
		for y := inner.Min.Y; y < inner.Max.Y; y++ {
			img.Set(inner.Min.X, y, col)
			img.Set(inner.Max.X-1, y, col)
		}
	}
}

// OutlinePolygon draws a closed polygon through pts onto img.
func OutlinePolygon(img *image.RGBA, pts []image.Point, col color.Color, thickness int) {
	if len(pts) < 2 {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		drawLine(img, a, b, col, thickness)
	}
}

// drawLine rasterizes a thick line segment with Bresenham stepping, stamping
// a thickness x thickness square at each step.
func drawLine(img *image.RGBA, a, b image.Point, col color.Color, thickness int) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx := sign(b.X - a.X)
	sy := sign(b.Y - a.Y)
	err := dx + dy

	x, y := a.X, a.Y
	for {
		stamp(img, x, y, col, thickness)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func stamp(img *image.RGBA, x, y int, col color.Color, thickness int) {
	half := thickness / 2
	bounds := img.Bounds()
	for oy := -half; oy <= half; oy++ {
		for ox := -half; ox <= half; ox++ {
			px, py := x+ox, y+oy
			if image.Pt(px, py).In(bounds) {
				img.Set(px, py, col)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
