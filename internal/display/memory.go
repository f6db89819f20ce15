package display

import (
	"sync"

	"github.com/dfajtai/good-moode/internal/domain"
)

// OpKind tags a recorded drawing operation.
type OpKind int

const (
	OpText OpKind = iota
	OpRect
)

// Op is one recorded drawing call.
type Op struct {
	Kind OpKind
	X, Y int
	W, H int
	Text string
	Size domain.FontSize
}

// Memory is an in-memory Surface for tests and for running the daemon
// off the appliance. Text measurement uses a fixed per-rune advance so
// scroll geometry is deterministic.
type Memory struct {
	width  int
	height int

	mu       sync.Mutex
	contrast int
	frames   int
	last     []Op
}

// Per-rune advances; the clock face is the widest, mirroring the real
// point sizes.
var memAdvance = map[domain.FontSize]int{
	domain.FontSmall: 6,
	domain.FontBig:   10,
	domain.FontClock: 20,
}

// NewMemory creates a memory surface of the given dimensions.
func NewMemory(width, height int) *Memory {
	return &Memory{width: width, height: height}
}

func (m *Memory) Size() (int, int) { return m.width, m.height }

func (m *Memory) SetContrast(level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contrast = level
}

func (m *Memory) Frame(draw func(domain.Frame)) {
	f := &memoryFrame{}
	defer func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.frames++
		m.last = f.ops
	}()
	draw(f)
}

// Contrast returns the last applied contrast level.
func (m *Memory) Contrast() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contrast
}

// Frames returns how many frames have been flushed.
func (m *Memory) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// LastFrame returns the operations of the most recent frame.
func (m *Memory) LastFrame() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]Op, len(m.last))
	copy(ops, m.last)
	return ops
}

type memoryFrame struct {
	ops []Op
}

func (f *memoryFrame) DrawText(x, y int, text string, size domain.FontSize) {
	f.ops = append(f.ops, Op{Kind: OpText, X: x, Y: y, Text: text, Size: size})
}

func (f *memoryFrame) MeasureText(text string, size domain.FontSize) int {
	return len([]rune(text)) * memAdvance[size]
}

func (f *memoryFrame) FillRect(x, y, w, h int) {
	f.ops = append(f.ops, Op{Kind: OpRect, X: x, Y: y, W: w, H: h})
}
