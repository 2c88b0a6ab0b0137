package render

import (
	"fmt"
	"math"

	"uilocator/pkg/types"
)

// Summary holds the textual side-panel values for a result. Every field is a
// plain display value taken straight from the result; nothing is recomputed
// from the image.
type Summary struct {
	Task       string
	Elapsed    string
	Pixel      string
	Normalized string
}

// Summarize formats the display values for a result.
func Summarize(result *types.LocalizationResult) Summary {
	return Summary{
		Task:    result.Task,
		Elapsed: fmt.Sprintf("%d ms", result.Elapsed.Milliseconds()),
		Pixel: fmt.Sprintf("(%d, %d)",
			int(math.Round(result.Coordinates.XPixel)),
			int(math.Round(result.Coordinates.YPixel))),
		Normalized: fmt.Sprintf("(%g, %g)", result.Coordinates.X, result.Coordinates.Y),
	}
}
