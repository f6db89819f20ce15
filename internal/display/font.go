package display

import (
	"os"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/dfajtai/good-moode/internal/domain"
)

// Point sizes matching the original appliance layout.
const (
	smallPointSize = 12
	bigPointSize   = 15
	clockPointSize = 32
)

type faceSet struct {
	small font.Face
	big   font.Face
	clock font.Face
}

func (f faceSet) face(size domain.FontSize) font.Face {
	switch size {
	case domain.FontBig:
		return f.big
	case domain.FontClock:
		return f.clock
	default:
		return f.small
	}
}

// loadFaces builds the three faces from the configured TTF paths. A
// missing or unparsable font falls back to the built-in fixed face so
// the display keeps working on a bare system.
func loadFaces(logger *zap.Logger, bigPath, smallPath string) faceSet {
	return faceSet{
		small: loadFace(logger, smallPath, smallPointSize),
		big:   loadFace(logger, bigPath, bigPointSize),
		clock: loadFace(logger, bigPath, clockPointSize),
	}
}

func loadFace(logger *zap.Logger, path string, points float64) font.Face {
	if path == "" {
		return basicfont.Face7x13
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("font load failed, using built-in face",
			zap.String("path", path), zap.Error(err))
		return basicfont.Face7x13
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		logger.Warn("font parse failed, using built-in face",
			zap.String("path", path), zap.Error(err))
		return basicfont.Face7x13
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
