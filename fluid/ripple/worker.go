package ripple

import "sync"

// span is an inclusive column range inside a row.
type span struct{ start, end int }

// rowMask groups the spans of one row that need computing.
type rowMask struct {
	y     int
	spans []span
}

// workerMask collects the rows assigned to one worker goroutine.
type workerMask struct {
	rows []rowMask
}

// stepper advances the height buffers of a field by one tick and swaps them.
type stepper interface {
	step(f *waveField, damp, speed, reflect float32) error
	name() string
	close()
}

// cpuStepper runs the finite difference update on a fixed pool of
// goroutines that wait on a condition variable between ticks.
type cpuStepper struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tick    int
	pending int
	stopped bool
	masks   []workerMask
	field   *waveField
	damp    float32
	speed   float32
	wg      sync.WaitGroup
}

func newCPUStepper(width, height, workers int) *cpuStepper {
	if workers < 1 {
		workers = 1
	}
	s := &cpuStepper{masks: assignRowMasks(workers, interiorRows(width, height))}
	s.cond = sync.NewCond(&s.mu)
	for i := range s.masks {
		s.wg.Add(1)
		go s.loop(i)
	}
	return s
}

func (s *cpuStepper) name() string { return "cpu" }

func (s *cpuStepper) loop(index int) {
	defer s.wg.Done()
	lastTick := 0
	s.mu.Lock()
	for {
		for s.tick == lastTick && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped {
			s.mu.Unlock()
			return
		}
		lastTick = s.tick
		mask := s.masks[index]
		field, damp, speed := s.field, s.damp, s.speed
		s.mu.Unlock()

		processMask(field, &mask, damp, speed)

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.cond.Broadcast()
		}
	}
}

func (s *cpuStepper) step(f *waveField, damp, speed, reflect float32) error {
	s.mu.Lock()
	s.field, s.damp, s.speed = f, damp, speed
	s.pending = len(s.masks)
	s.tick++
	s.cond.Broadcast()
	for s.pending > 0 {
		s.cond.Wait()
	}
	s.mu.Unlock()
	f.reflectBoundaries(reflect)
	f.swap()
	return nil
}

func (s *cpuStepper) close() {
	s.mu.Lock()
	s.stopped = true
	s.cond.Broadcast()
	s.mu.Unlock()
	s.wg.Wait()
}

// processMask applies the damped wave equation to the rows in mask.
func processMask(f *waveField, mask *workerMask, damp, speed float32) {
	width := f.width
	for _, row := range mask.rows {
		base := row.y * width
		center := f.curr[base : base+width]
		prev := f.prev[base : base+width]
		top := f.curr[base-width : base]
		bottom := f.curr[base+width : base+2*width]
		next := f.next[base : base+width]
		for _, sp := range row.spans {
			for x := sp.start; x <= sp.end; x++ {
				c := center[x]
				lap := center[x-1] + center[x+1] + top[x] + bottom[x] - 4*c
				next[x] = ((2*c - prev[x]) + speed*lap) * damp
			}
		}
	}
}

// interiorRows returns one full-width span per interior row.
func interiorRows(width, height int) []rowMask {
	if width < 3 || height < 3 {
		return nil
	}
	rows := make([]rowMask, 0, height-2)
	for y := 1; y < height-1; y++ {
		rows = append(rows, rowMask{y: y, spans: []span{{start: 1, end: width - 2}}})
	}
	return rows
}

// assignRowMasks distributes rows across workers round robin.
func assignRowMasks(workerCount int, rows []rowMask) []workerMask {
	if workerCount < 1 {
		workerCount = 1
	}
	masks := make([]workerMask, workerCount)
	for idx, row := range rows {
		masks[idx%workerCount].rows = append(masks[idx%workerCount].rows, row)
	}
	return masks
}
