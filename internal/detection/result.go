package detection

import "image"

// Detection is one scored window in original-image pixel coordinates.
//
// The tuple follows the detector's matrix convention: X runs down the image rows and
// Y across the columns, so (X1, Y1) is the top-left corner as (row, column) and
// (X2, Y2) the bottom-right. Use Rect for an image.Rectangle in Go's
// x=column, y=row convention.
type Detection struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Score float64 `json:"score"`
}

// Tuple returns (x1, y1, x2, y2, score).
func (d Detection) Tuple() [5]float64 {
	return [5]float64{d.X1, d.Y1, d.X2, d.Y2, d.Score}
}

// Rect converts the box into image coordinates, truncating toward zero.
func (d Detection) Rect() image.Rectangle {
	return image.Rect(int(d.Y1), int(d.X1), int(d.Y2), int(d.X2))
}

// Area is the box area in square pixels.
func (d Detection) Area() float64 {
	return (d.X2 - d.X1) * (d.Y2 - d.Y1)
}

// Unscale divides the box coordinates by scale, mapping a detection made on a
// resized pyramid level back onto the original image. The score is unchanged.
func (d Detection) Unscale(scale float64) Detection {
	return Detection{
		X1:    d.X1 / scale,
		Y1:    d.Y1 / scale,
		X2:    d.X2 / scale,
		Y2:    d.Y2 / scale,
		Score: d.Score,
	}
}

// Postprocessor filters or modifies a list of detections. The scanner never applies
// one itself; callers chain them over its output.
type Postprocessor func([]Detection) []Detection

// NewScoreFilter keeps detections scoring at least minScore.
func NewScoreFilter(minScore float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Score >= minScore {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewAreaFilter keeps detections whose box covers at least area square pixels.
// Boxes clamped at the image border can shrink below the window footprint.
func NewAreaFilter(area float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Area() >= area {
				out = append(out, d)
			}
		}
		return out
	}
}
