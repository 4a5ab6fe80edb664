package ripple

import "math"

// rippleGlint brightens crests and troughs so the surface reads even where
// there is no dye.
const rippleGlint = 0.35

// buildCellMap maps every surface pixel to its nearest grid cell.
func buildCellMap(surfW, surfH, gridW, gridH int) []int32 {
	m := make([]int32, surfW*surfH)
	for y := 0; y < surfH; y++ {
		gy := y * gridH / surfH
		for x := 0; x < surfW; x++ {
			gx := x * gridW / surfW
			m[y*surfW+x] = int32(gy*gridW + gx)
		}
	}
	return m
}

func toByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

// render writes the dye over the back colour, shaded by the surface normal.
func (e *Engine) render() {
	f := e.field
	back := e.set.back
	br, bg, bb := float32(back.R), float32(back.G), float32(back.B)
	for i, cell := range e.cellOf {
		idx := int(cell)
		r := f.dye[0][idx]
		g := f.dye[1][idx]
		b := f.dye[2][idx]
		h := f.curr[idx]
		glint := float32(math.Abs(float64(h))) * rippleGlint
		r += glint
		g += glint
		b += glint
		if e.set.shading {
			gx, gy := f.gradient(idx%f.width, idx/f.width)
			nz := 1 / float32(math.Sqrt(float64(gx*gx+gy*gy+1)))
			diffuse := nz + 0.7
			if diffuse > 1 {
				diffuse = 1
			}
			r *= diffuse
			g *= diffuse
			b *= diffuse
		}
		base := i * 4
		if e.set.transparent {
			a := max(r, g, b)
			e.pixels[base] = toByte(r)
			e.pixels[base+1] = toByte(g)
			e.pixels[base+2] = toByte(b)
			e.pixels[base+3] = toByte(a)
			continue
		}
		e.pixels[base] = toByte(br + r)
		e.pixels[base+1] = toByte(bg + g)
		e.pixels[base+2] = toByte(bb + b)
		e.pixels[base+3] = 255
	}
}
