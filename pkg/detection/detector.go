// Package detection provides face detection using computer vision
package detection

// Point is a pixel coordinate in the captured frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Observation represents one detected face in a frame.
// Coordinates are in pixels of the analyzed frame.
type Observation struct {
	TopLeft     Point   // Upper-left corner of the bounding box
	BottomRight Point   // Lower-right corner of the bounding box
	Landmarks   []Point // Optional facial landmarks (eyes, nose, mouth corners)
	Confidence  float64 // Detection confidence (0-1)
}

// Centroid returns the geometric midpoint of the bounding box.
// Each axis is averaged against its own extent of the box.
func (o Observation) Centroid() Point {
	return Point{
		X: (o.TopLeft.X + o.BottomRight.X) / 2,
		Y: (o.TopLeft.Y + o.BottomRight.Y) / 2,
	}
}

// Width returns the bounding box width in pixels.
func (o Observation) Width() float64 {
	return o.BottomRight.X - o.TopLeft.X
}

// Height returns the bounding box height in pixels.
func (o Observation) Height() float64 {
	return o.BottomRight.Y - o.TopLeft.Y
}

// Area returns the area of the bounding box in square pixels.
func (o Observation) Area() float64 {
	return o.Width() * o.Height()
}

// Detector is the interface for face detection backends.
// Implementations return observations in their own ranking order;
// consumers treat the first element as the primary face.
type Detector interface {
	// Detect finds faces in the JPEG image and returns their positions
	Detect(jpeg []byte) ([]Observation, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence (default 0.5)
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// Primary returns the primary face of a frame, or nil if none was
// detected. The detector's own ranking is respected, not re-sorted.
func Primary(obs []Observation) *Observation {
	if len(obs) == 0 {
		return nil
	}
	return &obs[0]
}
