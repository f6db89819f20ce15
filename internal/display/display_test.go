package display

import (
	"image"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/dfajtai/good-moode/internal/domain"
)

func TestLoadFaceFallsBack(t *testing.T) {
	logger := zap.NewNop()

	if face := loadFace(logger, "", 15); face != basicfont.Face7x13 {
		t.Error("empty path must yield the built-in face")
	}
	missing := filepath.Join(t.TempDir(), "nope.ttf")
	if face := loadFace(logger, missing, 15); face != basicfont.Face7x13 {
		t.Error("missing file must yield the built-in face")
	}
}

func TestCanvasFrameDrawsPixels(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 128, 64))
	f := &canvasFrame{
		img: img,
		faces: faceSet{
			small: basicfont.Face7x13,
			big:   basicfont.Face7x13,
			clock: basicfont.Face7x13,
		},
	}

	f.FillRect(10, 20, 5, 3)
	for y := 20; y < 23; y++ {
		for x := 10; x < 15; x++ {
			if img.GrayAt(x, y).Y == 0 {
				t.Fatalf("pixel (%d,%d) not filled", x, y)
			}
		}
	}
	if img.GrayAt(15, 20).Y != 0 || img.GrayAt(10, 23).Y != 0 {
		t.Error("fill leaked outside the rectangle")
	}

	f.DrawText(0, 0, "X", domain.FontSmall)
	lit := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 8; x++ {
			if img.GrayAt(x, y).Y != 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("DrawText produced no pixels")
	}
}

func TestCanvasFrameMeasure(t *testing.T) {
	f := &canvasFrame{faces: faceSet{small: basicfont.Face7x13}}
	// Face7x13 advances 7px per glyph.
	if w := f.MeasureText("abcd", domain.FontSmall); w != 28 {
		t.Errorf("expected width 28, got %d", w)
	}
}

func TestMemorySurfaceRecordsFrames(t *testing.T) {
	m := NewMemory(128, 64)

	w, h := m.Size()
	if w != 128 || h != 64 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}

	m.SetContrast(180)
	m.Frame(func(f domain.Frame) {
		f.DrawText(0, 0, "hello", domain.FontBig)
		f.FillRect(30, 40, 66, 4)
	})

	if m.Contrast() != 180 {
		t.Errorf("contrast not recorded: %d", m.Contrast())
	}
	if m.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", m.Frames())
	}
	ops := m.LastFrame()
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(ops))
	}
	if ops[0].Kind != OpText || ops[0].Text != "hello" {
		t.Errorf("unexpected first op: %+v", ops[0])
	}
	if ops[1].Kind != OpRect || ops[1].W != 66 {
		t.Errorf("unexpected second op: %+v", ops[1])
	}
}

func TestMemoryFrameFlushedOnPanic(t *testing.T) {
	m := NewMemory(128, 64)

	func() {
		defer func() { _ = recover() }()
		m.Frame(func(f domain.Frame) {
			f.DrawText(0, 0, "partial", domain.FontSmall)
			panic("draw callback exploded")
		})
	}()

	if m.Frames() != 1 {
		t.Errorf("frame must flush on every exit path, got %d flushes", m.Frames())
	}
	if ops := m.LastFrame(); len(ops) != 1 || ops[0].Text != "partial" {
		t.Errorf("partial frame lost: %+v", ops)
	}
}
