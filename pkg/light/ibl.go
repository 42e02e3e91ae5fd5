package light

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/core"
)

// IBL is an image-based infinite light: an equirectangular environment
// map, handed in as already-decoded pixels by the out-of-scope scene
// loader. Sampling importance-samples a luminance distribution over
// the map (a 2D piecewise-constant
// distribution, the standard equirectangular-environment-light
// technique).
type IBL struct {
	Width, Height int
	Pixels        []core.Vec3 // row-major, row 0 = top (theta=0)

	marginalCDF   []float64 // length Height+1
	conditionalCDF [][]float64 // [row][Width+1]
	rowPDF        []float64
	colPDF        [][]float64
	totalLuminance float64

	WorldCenter core.Vec3
	WorldRadius float64
}

// NewIBL builds the piecewise-constant 2D distribution over pixel
// luminance used for importance sampling, following the textbook
// marginal/conditional CDF construction (PBRT's Distribution2D).
func NewIBL(width, height int, pixels []core.Vec3) *IBL {
	ibl := &IBL{Width: width, Height: height, Pixels: pixels}
	ibl.buildDistribution()
	return ibl
}

func (ibl *IBL) buildDistribution() {
	w, h := ibl.Width, ibl.Height
	ibl.conditionalCDF = make([][]float64, h)
	ibl.colPDF = make([][]float64, h)
	ibl.rowPDF = make([]float64, h)
	ibl.marginalCDF = make([]float64, h+1)

	marginalSum := 0.0
	for y := 0; y < h; y++ {
		// sin(theta) weights rows toward the equator, correcting for the
		// equirectangular projection's area distortion near the poles.
		theta := (float64(y) + 0.5) / float64(h) * math.Pi
		sinTheta := math.Sin(theta)

		row := make([]float64, w+1)
		rowSum := 0.0
		for x := 0; x < w; x++ {
			lum := ibl.Pixels[y*w+x].Luminance() * sinTheta
			rowSum += lum
			row[x+1] = rowSum
		}
		cdf := make([]float64, w+1)
		pdf := make([]float64, w)
		if rowSum > 0 {
			for x := 0; x <= w; x++ {
				cdf[x] = row[x] / rowSum
			}
			for x := 0; x < w; x++ {
				pdf[x] = (row[x+1] - row[x]) / rowSum * float64(w)
			}
		} else {
			for x := 0; x <= w; x++ {
				cdf[x] = float64(x) / float64(w)
			}
			for x := 0; x < w; x++ {
				pdf[x] = 1
			}
		}
		ibl.conditionalCDF[y] = cdf
		ibl.colPDF[y] = pdf
		ibl.rowPDF[y] = rowSum
		marginalSum += rowSum
		ibl.marginalCDF[y+1] = marginalSum
	}
	ibl.totalLuminance = marginalSum
	if marginalSum > 0 {
		for y := 0; y <= h; y++ {
			ibl.marginalCDF[y] /= marginalSum
		}
		for y := range ibl.rowPDF {
			ibl.rowPDF[y] = ibl.rowPDF[y] / marginalSum * float64(h)
		}
	} else {
		for y := 0; y <= h; y++ {
			ibl.marginalCDF[y] = float64(y) / float64(h)
		}
		for y := range ibl.rowPDF {
			ibl.rowPDF[y] = 1
		}
	}
}

func findInterval(cdf []float64, u float64) int {
	lo, hi := 0, len(cdf)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if cdf[mid] <= u {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// sampleContinuous draws (u,v) proportional to luminance, returning the
// pixel-space sample and the combined PDF (per unit area in [0,1]^2).
func (ibl *IBL) sampleContinuous(s core.Vec2) (u, v float64, pdf float64) {
	if ibl.totalLuminance <= 0 {
		return s.X, s.Y, 1.0
	}
	row := findInterval(ibl.marginalCDF, s.X)
	dv := ibl.marginalCDF[row+1] - ibl.marginalCDF[row]
	var rowFrac float64
	if dv > 0 {
		rowFrac = (s.X - ibl.marginalCDF[row]) / dv
	}
	v = (float64(row) + rowFrac) / float64(ibl.Height)

	cdf := ibl.conditionalCDF[row]
	col := findInterval(cdf, s.Y)
	du := cdf[col+1] - cdf[col]
	var colFrac float64
	if du > 0 {
		colFrac = (s.Y - cdf[col]) / du
	}
	u = (float64(col) + colFrac) / float64(ibl.Width)

	pdf = ibl.rowPDF[row] * ibl.colPDF[row][col]
	return u, v, pdf
}

// directionToUV maps a world direction to equirectangular (u,v).
func directionToUV(dir core.Vec3) (u, v float64) {
	theta := math.Acos(math.Max(-1, math.Min(1, dir.Y)))
	phi := math.Atan2(dir.Z, dir.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	u = phi / (2 * math.Pi)
	v = theta / math.Pi
	return
}

func uvToDirection(u, v float64) core.Vec3 {
	theta := v * math.Pi
	phi := u * 2 * math.Pi
	sinTheta := math.Sin(theta)
	return core.Vec3{X: sinTheta * math.Cos(phi), Y: math.Cos(theta), Z: sinTheta * math.Sin(phi)}
}

func (ibl *IBL) lookup(u, v float64) core.Vec3 {
	x := clampIndex(int(u*float64(ibl.Width)), ibl.Width)
	y := clampIndex(int(v*float64(ibl.Height)), ibl.Height)
	return ibl.Pixels[y*ibl.Width+x]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// directionPDF returns the solid-angle PDF for sampling dir, converting
// the image-space PDF by the equirectangular Jacobian 1/(2*pi^2*sinTheta).
func (ibl *IBL) directionPDF(dir core.Vec3) float64 {
	u, v := directionToUV(dir)
	theta := v * math.Pi
	sinTheta := math.Sin(theta)
	if sinTheta <= 0 {
		return 0
	}
	x := clampIndex(int(u*float64(ibl.Width)), ibl.Width)
	y := clampIndex(int(v*float64(ibl.Height)), ibl.Height)
	imgPDF := ibl.rowPDF[y] * ibl.colPDF[y][x]
	return imgPDF / (2 * math.Pi * math.Pi * sinTheta)
}

func (ibl *IBL) IsDelta() bool      { return false }
func (ibl *IBL) NumSamples() int    { return 1 }
func (ibl *IBL) CanIntersect() bool { return true }

func (ibl *IBL) Sample(point, normal core.Vec3, sample core.Vec2) core.LightSample {
	u, v, imgPDF := ibl.sampleContinuous(sample)
	dir := uvToDirection(u, v)
	theta := v * math.Pi
	sinTheta := math.Sin(theta)
	if sinTheta <= 0 || imgPDF <= 0 {
		return core.LightSample{}
	}
	pdf := imgPDF / (2 * math.Pi * math.Pi * sinTheta)
	return core.LightSample{
		Point:     point.Add(dir.Multiply(2 * ibl.radius())),
		Normal:    dir.Negate(),
		Direction: dir,
		Distance:  math.Inf(1),
		Emission:  ibl.lookup(u, v),
		PDF:       pdf,
	}
}

func (ibl *IBL) radius() float64 {
	if ibl.WorldRadius > 0 {
		return ibl.WorldRadius
	}
	return 1
}

func (ibl *IBL) PDF(point, normal, direction core.Vec3) float64 {
	return ibl.directionPDF(direction.Normalize())
}

func (ibl *IBL) SampleEmission(samplePoint, sampleDirection core.Vec2) core.EmissionSample {
	u, v, imgPDF := ibl.sampleContinuous(samplePoint)
	dir := uvToDirection(u, v)
	theta := v * math.Pi
	sinTheta := math.Sin(theta)
	dirPDF := 0.0
	if sinTheta > 0 {
		dirPDF = imgPDF / (2 * math.Pi * math.Pi * sinTheta)
	}
	origin := ibl.WorldCenter.Add(dir.Multiply(-ibl.radius()))
	return core.EmissionSample{
		Point:        origin,
		Normal:       dir,
		Direction:    dir,
		Emission:     ibl.lookup(u, v),
		AreaPDF:      1.0 / (math.Pi * ibl.radius() * ibl.radius()),
		DirectionPDF: dirPDF,
	}
}

func (ibl *IBL) EmissionPDF(point, direction core.Vec3) float64 {
	r := ibl.radius()
	return 1.0 / (math.Pi * r * r)
}

func (ibl *IBL) Emit(ray core.Ray) core.Vec3 {
	u, v := directionToUV(ray.Direction.Normalize())
	return ibl.lookup(u, v)
}
