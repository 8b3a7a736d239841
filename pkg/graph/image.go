package graph

import (
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// DefaultImageScale is the side length of a fresh preview viewport.
const DefaultImageScale = 4.0

// Image is the preview viewport carried by every noise-producing node.
// Version is bumped whenever the preview must be re-rendered; it is not
// persisted.
type Image struct {
	Scale   float64 `json:"scale"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Version uint64  `json:"-"`
}

// DefaultImage returns a viewport centered on the origin.
func DefaultImage() Image {
	return Image{Scale: DefaultImageScale}
}

func (im *Image) image() *Image { return im }

// Invalidate marks the preview stale.
func (im *Image) Invalidate() {
	im.Version++
}

// Bounds returns the sampled square region.
func (im *Image) Bounds() sdf.Box2 {
	half := im.Scale / 2
	return sdf.Box2{
		Min: v2.Vec{X: im.X - half, Y: im.Y - half},
		Max: v2.Vec{X: im.X + half, Y: im.Y + half},
	}
}

// SamplePoints returns the centers of a res x res pixel grid over Bounds in
// row-major order, top row first.
func (im *Image) SamplePoints(res int) []v2.Vec {
	if res <= 0 {
		return nil
	}
	b := im.Bounds()
	size := b.Size()
	dx, dy := size.X/float64(res), size.Y/float64(res)
	pts := make([]v2.Vec, 0, res*res)
	for row := 0; row < res; row++ {
		y := b.Max.Y - (float64(row)+0.5)*dy
		for col := 0; col < res; col++ {
			x := b.Min.X + (float64(col)+0.5)*dx
			pts = append(pts, v2.Vec{X: x, Y: y})
		}
	}
	return pts
}
