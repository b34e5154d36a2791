package ai

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"

	"roadserver/internal/logger"
	"roadserver/internal/models"
)

const (
	// InputSize is the fixed model input resolution (InputSize x InputSize).
	InputSize = 640

	// DefaultConfidenceThreshold is applied when a caller does not supply one.
	DefaultConfidenceThreshold = 0.5

	// outputRowSize is the per-detection row width of the exported model:
	// x1, y1, x2, y2, confidence, class index. NMS is fused into the export.
	outputRowSize = 6
)

// palette cycles per class index when drawing boxes.
var palette = []color.RGBA{
	{R: 255, G: 0, B: 0, A: 0},
	{R: 0, G: 255, B: 0, A: 0},
	{R: 0, G: 0, B: 255, A: 0},
	{R: 255, G: 255, B: 0, A: 0},
}

var labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}

// DetectorService wraps the pretrained road damage network. A missing or
// broken model is not fatal: the service stays up and Detect soft-degrades
// to an unannotated image with no damages.
type DetectorService struct {
	net       gocv.Net
	loaded    bool
	modelPath string
	slots     chan struct{} // bounds concurrent Forward calls
	logger    *logger.Logger
}

// NewDetectorService loads the network from modelPath. workers bounds the
// number of in-flight model invocations.
func NewDetectorService(modelPath string, workers int, logger *logger.Logger) *DetectorService {
	if workers < 1 {
		workers = 1
	}

	service := &DetectorService{
		modelPath: modelPath,
		slots:     make(chan struct{}, workers),
		logger:    logger,
	}

	if err := service.initializeNet(); err != nil {
		service.logger.Warning("Could not initialize detection network: %v", err)
		return service
	}

	return service
}

// initializeNet loads the detection network from the model file.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	net := gocv.ReadNetFromONNX(s.modelPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", s.modelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return fmt.Errorf("failed to set preferable backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return fmt.Errorf("failed to set preferable target: %w", err)
	}

	s.net = net
	s.loaded = true
	s.logger.Info("Detection network initialized from %s", s.modelPath)
	return nil
}

// Available reports whether the model handle is usable.
func (s *DetectorService) Available() bool {
	return s.loaded
}

// Close releases the network.
func (s *DetectorService) Close() {
	if s.loaded {
		s.net.Close()
		s.loaded = false
	}
}

// Detect runs the network on img at the given confidence threshold and
// returns an annotated copy of the original image plus the damages found,
// in the model's native output order. The caller owns the returned mat.
// An unavailable model or a failed inference degrades to a plain copy of
// the input and an empty damage list, never a hard error.
func (s *DetectorService) Detect(img gocv.Mat, confidenceThreshold float32) (gocv.Mat, []models.Damage) {
	annotated := img.Clone()

	if !s.loaded {
		return annotated, nil
	}

	s.slots <- struct{}{}
	detections, err := s.forward(img, confidenceThreshold)
	<-s.slots

	if err != nil {
		s.logger.Error("Inference failed: %v", err)
		return annotated, nil
	}

	damages := make([]models.Damage, 0, len(detections))
	for _, det := range detections {
		drawDetection(&annotated, det)
		damages = append(damages, det.damage)
	}

	return annotated, damages
}

// rawDetection keeps the class index alongside the mapped damage for drawing.
type rawDetection struct {
	damage   models.Damage
	classIdx int
}

// forward resizes to model space, runs the net and maps the output rows back
// into original-image coordinates.
func (s *DetectorService) forward(img gocv.Mat, confidenceThreshold float32) (detections []rawDetection, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model invocation panicked: %v", r)
		}
	}()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(InputSize, InputSize), 0, 0, gocv.InterpolationArea)

	blob := gocv.BlobFromImage(resized, 1.0/255.0, image.Pt(InputSize, InputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return nil, fmt.Errorf("model produced empty output")
	}
	if output.Total()%outputRowSize != 0 {
		return nil, fmt.Errorf("unexpected output size %d", output.Total())
	}

	rows := output.Reshape(1, output.Total()/outputRowSize)
	defer rows.Close()

	for i := 0; i < rows.Rows(); i++ {
		confidence := rows.GetFloatAt(i, 4)
		if confidence < confidenceThreshold {
			continue
		}

		classIdx := int(rows.GetFloatAt(i, 5))
		detections = append(detections, rawDetection{
			damage: models.Damage{
				Class:      classLabel(classIdx),
				Confidence: float64(confidence),
				BBox: scaleBox(
					rows.GetFloatAt(i, 0), rows.GetFloatAt(i, 1),
					rows.GetFloatAt(i, 2), rows.GetFloatAt(i, 3),
					img.Cols(), img.Rows(),
				),
			},
			classIdx: classIdx,
		})
	}

	return detections, nil
}

// drawDetection draws the bounding box and a class/confidence label onto mat.
func drawDetection(mat *gocv.Mat, det rawDetection) {
	c := paletteColor(det.classIdx)
	box := det.damage.BBox

	gocv.Rectangle(mat, image.Rect(box[0], box[1], box[2], box[3]), c, 2)

	label := fmt.Sprintf("%s: %.2f", det.damage.Class, det.damage.Confidence)
	gocv.PutText(mat, label, image.Pt(box[0], box[1]-5), gocv.FontHersheySimplex, 0.6, labelColor, 2)
}

// scaleBox rescales a model-space box back to original-image pixels,
// truncating to integers.
func scaleBox(x1, y1, x2, y2 float32, origW, origH int) [4]int {
	return [4]int{
		int(x1 * float32(origW) / InputSize),
		int(y1 * float32(origH) / InputSize),
		int(x2 * float32(origW) / InputSize),
		int(y2 * float32(origH) / InputSize),
	}
}

// classLabel maps a model class index onto the fixed label set. Indexes
// outside the known range get a generated label.
func classLabel(idx int) string {
	if idx >= 0 && idx < len(models.DamageClasses) {
		return models.DamageClasses[idx]
	}
	return fmt.Sprintf("Class_%d", idx)
}

// paletteColor picks the box colour by class index, cycling the palette.
func paletteColor(idx int) color.RGBA {
	n := len(palette)
	return palette[((idx%n)+n)%n]
}
