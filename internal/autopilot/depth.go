package autopilot

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ROI returns the bounds of the centered rectangle covering fraction of each
// side of a rows x cols frame. Row and column ends are exclusive.
func ROI(rows, cols int, fraction float64) (r0, r1, c0, c1 int) {
	if fraction <= 0 || math.IsNaN(fraction) {
		return 0, 0, 0, 0
	}
	if fraction > 1 {
		fraction = 1
	}

	roiHeight := int(float64(rows) * fraction)
	roiWidth := int(float64(cols) * fraction)
	centerY := rows / 2
	centerX := cols / 2

	r0 = max(centerY-roiHeight/2, 0)
	r1 = min(centerY+roiHeight/2, rows)
	c0 = max(centerX-roiWidth/2, 0)
	c1 = min(centerX+roiWidth/2, cols)
	return r0, r1, c0, c1
}

// MinDistance is the smallest finite positive depth inside the ROI, or +Inf
// when the ROI holds no valid samples.
func MinDistance(depth mat.Matrix, fraction float64) float64 {
	if depth == nil {
		return math.Inf(1)
	}

	rows, cols := depth.Dims()
	r0, r1, c0, c1 := ROI(rows, cols, fraction)
	if r1 <= r0 || c1 <= c0 {
		return math.Inf(1)
	}

	var roi mat.Matrix
	if dense, ok := depth.(*mat.Dense); ok {
		roi = dense.Slice(r0, r1, c0, c1)
	} else {
		roi = roiView{m: depth, r0: r0, c0: c0, rows: r1 - r0, cols: c1 - c0}
	}

	minDistance := math.Inf(1)
	roiRows, roiCols := roi.Dims()
	for i := 0; i < roiRows; i++ {
		for j := 0; j < roiCols; j++ {
			value := roi.At(i, j)
			if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
				continue
			}
			if value < minDistance {
				minDistance = value
			}
		}
	}
	return minDistance
}

type roiView struct {
	m          mat.Matrix
	r0, c0     int
	rows, cols int
}

func (v roiView) Dims() (int, int) {
	return v.rows, v.cols
}

func (v roiView) At(i, j int) float64 {
	return v.m.At(v.r0+i, v.c0+j)
}

func (v roiView) T() mat.Matrix {
	return mat.Transpose{Matrix: v}
}
