package ai

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"roadserver/internal/config"
	"roadserver/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
}

func TestClassLabel(t *testing.T) {
	assert.Equal(t, "Longitudinal Crack", classLabel(0))
	assert.Equal(t, "Transverse Crack", classLabel(1))
	assert.Equal(t, "Alligator Crack", classLabel(2))
	assert.Equal(t, "Potholes", classLabel(3))
	assert.Equal(t, "Class_4", classLabel(4))
	assert.Equal(t, "Class_-1", classLabel(-1))
}

func TestScaleBox(t *testing.T) {
	assert.Equal(t, [4]int{0, 0, 1024, 768}, scaleBox(0, 0, 640, 640, 1024, 768))
	assert.Equal(t, [4]int{100, 25, 150, 50}, scaleBox(320, 160, 480, 320, 200, 100))
}

func TestScaleBoxStaysWithinOriginalBounds(t *testing.T) {
	dims := [][2]int{{1, 1}, {33, 97}, {640, 640}, {1920, 1080}, {4032, 3024}}
	boxes := [][4]float32{
		{0, 0, 640, 640},
		{0.5, 0.5, 639.5, 639.5},
		{100, 200, 300, 400},
		{639, 639, 640, 640},
	}

	for _, d := range dims {
		for _, b := range boxes {
			box := scaleBox(b[0], b[1], b[2], b[3], d[0], d[1])
			for i, coord := range box {
				limit := d[0]
				if i%2 == 1 {
					limit = d[1]
				}
				assert.GreaterOrEqual(t, coord, 0, "dims %v box %v", d, b)
				assert.LessOrEqual(t, coord, limit, "dims %v box %v", d, b)
			}
		}
	}
}

func TestPaletteColorCycles(t *testing.T) {
	assert.Equal(t, palette[0], paletteColor(0))
	assert.Equal(t, palette[3], paletteColor(3))
	assert.Equal(t, palette[1], paletteColor(5))
	// Out-of-range indexes must never panic.
	assert.NotPanics(t, func() { paletteColor(-1) })
}

func TestDetectorUnavailableWithoutModelFile(t *testing.T) {
	service := NewDetectorService(filepath.Join(t.TempDir(), "missing.onnx"), 2, newTestLogger(t))

	assert.False(t, service.Available())
}

func TestDetectSoftDegradesWithoutModel(t *testing.T) {
	service := NewDetectorService(filepath.Join(t.TempDir(), "missing.onnx"), 2, newTestLogger(t))

	img := gocv.NewMatWithSize(120, 200, gocv.MatTypeCV8UC3)
	defer img.Close()

	annotated, damages := service.Detect(img, DefaultConfidenceThreshold)
	defer annotated.Close()

	require.Empty(t, damages)
	assert.Equal(t, img.Rows(), annotated.Rows())
	assert.Equal(t, img.Cols(), annotated.Cols())
}
