package ripple

import "math"

// footprintCutoff drops Gaussian weights below this value.
const footprintCutoff = 1e-3

// footprintCell is one cell of a precomputed splat kernel. px, py are the
// cell's offset in aspect-corrected texture units (py grows upward).
type footprintCell struct {
	dx, dy int
	px, py float32
	weight float32
}

type footprintKey struct {
	radius        float64
	width, height int
}

// splatFootprint precomputes the Gaussian kernel exp(-|p|²/r) used for a
// splat of the given radius, where r is radius/100 as in the upstream engine
// and p is measured in texture units with x scaled by the aspect ratio.
func splatFootprint(radius float64, width, height int) []footprintCell {
	r := radius / 100
	if r <= 0 || width < 2 || height < 2 {
		return nil
	}
	aspect := float64(width) / float64(height)
	if aspect > 1 {
		r *= aspect
	}
	reach := math.Sqrt(-r * math.Log(footprintCutoff))
	rx := int(math.Ceil(reach / aspect * float64(width-1)))
	ry := int(math.Ceil(reach * float64(height-1)))
	cells := make([]footprintCell, 0, (2*rx+1)*(2*ry+1))
	for dy := -ry; dy <= ry; dy++ {
		py := -float64(dy) / float64(height-1)
		for dx := -rx; dx <= rx; dx++ {
			px := float64(dx) / float64(width-1) * aspect
			w := math.Exp(-(px*px + py*py) / r)
			if w < footprintCutoff {
				continue
			}
			cells = append(cells, footprintCell{
				dx: dx, dy: dy,
				px: float32(px), py: float32(py),
				weight: float32(w),
			})
		}
	}
	return cells
}

// footprintCache memoizes kernels per radius; splats reuse a handful of
// radii (pointer, motion, seeding).
type footprintCache struct {
	entries map[footprintKey][]footprintCell
}

func (c *footprintCache) get(radius float64, width, height int) []footprintCell {
	key := footprintKey{radius: radius, width: width, height: height}
	if cells, ok := c.entries[key]; ok {
		return cells
	}
	if c.entries == nil {
		c.entries = make(map[footprintKey][]footprintCell)
	}
	if len(c.entries) > 64 {
		clear(c.entries)
	}
	cells := splatFootprint(radius, width, height)
	c.entries[key] = cells
	return cells
}
