package ripple

// waveField stores the three height buffers of the finite difference solver
// plus the RGB dye layer carried on the surface.
type waveField struct {
	width, height int
	curr          []float32
	prev          []float32
	next          []float32

	dye     [3][]float32
	dyeNext [3][]float32

	// currDirty is set when the host writes into curr between steps, so a
	// device-side solver knows to upload it again.
	currDirty bool
}

func newWaveField(width, height int) *waveField {
	n := width * height
	f := &waveField{
		width: width, height: height,
		curr: make([]float32, n),
		prev: make([]float32, n),
		next: make([]float32, n),
	}
	for c := range f.dye {
		f.dye[c] = make([]float32, n)
		f.dyeNext[c] = make([]float32, n)
	}
	return f
}

func (f *waveField) index(x, y int) int { return y*f.width + x }

// addHeight displaces the surface at a cell, keeping it within [-1, 1].
func (f *waveField) addHeight(idx int, v float32) {
	h := f.curr[idx] + v
	if h > 1 {
		h = 1
	} else if h < -1 {
		h = -1
	}
	f.curr[idx] = h
	f.currDirty = true
}

// swap rotates the triple buffers so that next becomes current and current
// becomes previous.
func (f *waveField) swap() {
	f.prev, f.curr, f.next = f.curr, f.next, f.prev
}

func (f *waveField) swapDye() {
	f.dye, f.dyeNext = f.dyeNext, f.dye
}

// reflectBoundaries mirrors the first interior row/column onto the edges of
// next with an inverted, attenuated sign.
func (f *waveField) reflectBoundaries(reflect float32) {
	lastRow := f.height - 1
	lastCol := f.width - 1
	for x := 0; x < f.width; x++ {
		f.next[x] = -f.next[f.width+x] * reflect
		f.next[lastRow*f.width+x] = -f.next[(lastRow-1)*f.width+x] * reflect
	}
	for y := 1; y < lastRow; y++ {
		base := y * f.width
		f.next[base] = -f.next[base+1] * reflect
		f.next[base+lastCol] = -f.next[base+lastCol-1] * reflect
	}
}

// gradient returns the central-difference slope of the surface at (x, y) in
// grid axes.
func (f *waveField) gradient(x, y int) (float32, float32) {
	x0, x1 := x-1, x+1
	if x0 < 0 {
		x0 = 0
	}
	if x1 >= f.width {
		x1 = f.width - 1
	}
	y0, y1 := y-1, y+1
	if y0 < 0 {
		y0 = 0
	}
	if y1 >= f.height {
		y1 = f.height - 1
	}
	row := y * f.width
	gx := (f.curr[row+x1] - f.curr[row+x0]) * 0.5
	gy := (f.curr[y1*f.width+x] - f.curr[y0*f.width+x]) * 0.5
	return gx, gy
}

// sampleDye bilinearly samples channel c at a fractional grid position,
// clamped to the edges.
func (f *waveField) sampleDye(c int, x, y float32) float32 {
	maxX := float32(f.width - 1)
	maxY := float32(f.height - 1)
	if x < 0 {
		x = 0
	} else if x > maxX {
		x = maxX
	}
	if y < 0 {
		y = 0
	} else if y > maxY {
		y = maxY
	}
	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= f.width {
		x1 = f.width - 1
	}
	if y1 >= f.height {
		y1 = f.height - 1
	}
	tx := x - float32(x0)
	ty := y - float32(y0)
	d := f.dye[c]
	top := d[y0*f.width+x0]*(1-tx) + d[y0*f.width+x1]*tx
	bottom := d[y1*f.width+x0]*(1-tx) + d[y1*f.width+x1]*tx
	return top*(1-ty) + bottom*ty
}
