package types

import "time"

// TaskKind identifies the kind of localization task sent to the backend.
type TaskKind string

const (
	// TaskPoint asks the model for a single click position. It is the only
	// kind wired end to end; the wire value doubles as the task_type field.
	TaskPoint TaskKind = "click"
)

// Task pairs a natural-language instruction with a task kind.
type Task struct {
	Instruction string
	Kind        TaskKind
}

// Coordinates carries the target position in the service's normalized scale
// together with literal pixel coordinates for the returned image. The pixel
// values are part of the service contract and are never re-derived client-side.
type Coordinates struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	XPixel float64 `json:"x_pixel"`
	YPixel float64 `json:"y_pixel"`
}

// LocalizationResult is a successful response from the processing endpoint.
// ImageWidth and ImageHeight are the dimensions the pixel coordinates were
// computed against; they are authoritative over the decoded image's intrinsic
// size when rendering.
type LocalizationResult struct {
	Task           string      `json:"task"`
	Coordinates    Coordinates `json:"coordinates"`
	ProcessedImage string      `json:"processed_image"`
	ImageWidth     int         `json:"image_width"`
	ImageHeight    int         `json:"image_height"`

	// Elapsed is the client-measured wall-clock time from sending the
	// request to receiving the full response.
	Elapsed time.Duration `json:"-"`

	// ServerMillis is the processing time the backend reported for itself.
	ServerMillis int `json:"-"`
}
