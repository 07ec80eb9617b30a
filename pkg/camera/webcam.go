package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// FrameSource captures frames for the monitoring pipeline.
type FrameSource interface {
	// CaptureJPEG grabs one frame as JPEG bytes.
	CaptureJPEG() ([]byte, error)

	// Close releases the capture device.
	Close() error
}

// Webcam captures frames from a local video device via OpenCV.
type Webcam struct {
	cfg Config

	mu     sync.Mutex
	cap    *gocv.VideoCapture
	frame  gocv.Mat
	closed bool
}

// OpenWebcam opens the configured capture device. A device that cannot
// be opened is a hard failure; there is no video fallback.
func OpenWebcam(cfg Config) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}

	cap, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open capture device %d: %w", cfg.Device, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &Webcam{
		cfg:   cfg,
		cap:   cap,
		frame: gocv.NewMat(),
	}, nil
}

// CaptureJPEG grabs one frame and encodes it as JPEG.
func (w *Webcam) CaptureJPEG() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, fmt.Errorf("webcam closed")
	}

	if ok := w.cap.Read(&w.frame); !ok {
		return nil, fmt.Errorf("read frame from device %d", w.cfg.Device)
	}
	if w.frame.Empty() {
		return nil, fmt.Errorf("empty frame from device %d", w.cfg.Device)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, w.frame,
		[]int{gocv.IMWriteJpegQuality, w.cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Config returns the webcam configuration.
func (w *Webcam) Config() Config {
	return w.cfg
}

// Close releases the device and the reusable frame buffer.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.frame.Close()
	return w.cap.Close()
}

// Ensure Webcam implements FrameSource.
var _ FrameSource = (*Webcam)(nil)
