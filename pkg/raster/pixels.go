package raster

import "math"

// pointsPerInch is the PDF user-space unit density.
const pointsPerInch = 72.0

// PixelSize maps a physical extent in points to a pixel count at the
// given resolution. Rounding is half away from zero and the result is
// never below one pixel. Assumes dpi > 0, which the orchestrator
// validates before any page reaches this function.
func PixelSize(points float64, dpi int) int {
	px := int(math.Round(points * float64(dpi) / pointsPerInch))
	if px < 1 {
		return 1
	}
	return px
}

// Pixels resolves the raster dimensions of the page at the given
// resolution.
func (p Page) Pixels(dpi int) PixelDimensions {
	return PixelDimensions{
		Width:  PixelSize(p.WidthPt, dpi),
		Height: PixelSize(p.HeightPt, dpi),
	}
}
