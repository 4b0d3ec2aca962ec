// Concrete implementations of quality metrics
package metrics

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"image-signal-processing/internal/core"
	"image-signal-processing/internal/io"
)

// SSIM stabilizers for 8-bit data: (0.01*255)^2 and (0.03*255)^2.
const (
	ssimC1 = 6.5025
	ssimC2 = 58.5225

	ssimSigma  = 1.5
	ssimWindow = 11
)

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

// Calculate returns +Inf for identical images.
func (p *PSNR) Calculate(original, processed *core.Gray) (float64, error) {
	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}

	a, err := io.GrayToMat(original)
	if err != nil {
		return 0, err
	}
	defer a.Close()
	b, err := io.GrayToMat(processed)
	if err != nil {
		return 0, err
	}
	defer b.Close()
	return float64(gocv.PSNR(a, b)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio - measures image quality"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100
}

func (p *PSNR) IsHigherBetter() bool {
	return true
}

// MSE implements Mean Squared Error metric
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed *core.Gray) (float64, error) {
	return meanSquaredError(original, processed)
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetDescription() string {
	return "Mean Squared Error between images"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 65025 // 255^2
}

func (m *MSE) IsHigherBetter() bool {
	return false
}

// SSIM implements Structural Similarity Index metric averaged over
// Gaussian-weighted local windows.
type SSIM struct{}

// NewSSIM creates a new SSIM metric
func NewSSIM() *SSIM {
	return &SSIM{}
}

func (s *SSIM) Calculate(original, processed *core.Gray) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}
	f1 := core.GridFromGray(original)
	f2 := core.GridFromGray(processed)
	f1Sq := product(f1, f1)
	f2Sq := product(f2, f2)
	f1f2 := product(f1, f2)

	local := make([]*core.Grid, 5)
	for i, g := range []*core.Grid{f1, f2, f1Sq, f2Sq, f1f2} {
		var err error
		if local[i], err = gaussianMean(g); err != nil {
			return 0, err
		}
	}
	mu1, mu2, e11, e22, e12 := local[0], local[1], local[2], local[3], local[4]

	ssimMap := make([]float64, len(f1.Data))
	for i := range ssimMap {
		m1, m2 := mu1.Data[i], mu2.Data[i]
		v1 := e11.Data[i] - m1*m1
		v2 := e22.Data[i] - m2*m2
		cov := e12.Data[i] - m1*m2
		ssimMap[i] = ((2*m1*m2 + ssimC1) * (2*cov + ssimC2)) /
			((m1*m1 + m2*m2 + ssimC1) * (v1 + v2 + ssimC2))
	}
	return stat.Mean(ssimMap, nil), nil
}

func (s *SSIM) GetName() string {
	return "SSIM"
}

func (s *SSIM) GetDescription() string {
	return "Structural Similarity Index - measures perceptual quality"
}

func (s *SSIM) GetRange() (float64, float64) {
	return 0, 1
}

func (s *SSIM) IsHigherBetter() bool {
	return true
}

// ContrastRatio implements contrast ratio metric
type ContrastRatio struct{}

// NewContrastRatio creates a new contrast ratio metric
func NewContrastRatio() *ContrastRatio {
	return &ContrastRatio{}
}

// Calculate returns the ratio of the processed standard deviation to the
// original one, or 1 when the original is flat.
func (c *ContrastRatio) Calculate(original, processed *core.Gray) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}
	origContrast := spread(core.GridFromGray(original).Data)
	if origContrast == 0 {
		return 1.0, nil
	}
	return spread(core.GridFromGray(processed).Data) / origContrast, nil
}

func (c *ContrastRatio) GetName() string {
	return "Contrast Ratio"
}

func (c *ContrastRatio) GetDescription() string {
	return "Ratio of contrast preservation"
}

func (c *ContrastRatio) GetRange() (float64, float64) {
	return 0, 2
}

func (c *ContrastRatio) IsHigherBetter() bool {
	return true
}

// Sharpness implements sharpness metric
type Sharpness struct{}

// NewSharpness creates a new sharpness metric
func NewSharpness() *Sharpness {
	return &Sharpness{}
}

// Calculate compares the variance of the Laplacian response of both images.
func (s *Sharpness) Calculate(original, processed *core.Gray) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}
	origSharpness, err := laplacianVariance(original)
	if err != nil {
		return 0, err
	}
	if origSharpness == 0 {
		return 1.0, nil
	}
	procSharpness, err := laplacianVariance(processed)
	if err != nil {
		return 0, err
	}
	return procSharpness / origSharpness, nil
}

func (s *Sharpness) GetName() string {
	return "Sharpness"
}

func (s *Sharpness) GetDescription() string {
	return "Edge preservation measure"
}

func (s *Sharpness) GetRange() (float64, float64) {
	return 0, 2
}

func (s *Sharpness) IsHigherBetter() bool {
	return true
}

func validatePair(original, processed *core.Gray) error {
	if err := original.Validate(); err != nil {
		return err
	}
	if err := processed.Validate(); err != nil {
		return err
	}
	if !original.SameShape(processed) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", core.ErrShapeMismatch,
			original.Width, original.Height, processed.Width, processed.Height)
	}
	return nil
}

func meanSquaredError(original, processed *core.Gray) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}
	sq := make([]float64, len(original.Pix))
	for i := range sq {
		d := float64(original.Pix[i]) - float64(processed.Pix[i])
		sq[i] = d * d
	}
	return stat.Mean(sq, nil), nil
}

// gaussianMean blurs g with the SSIM window and reflected borders.
func gaussianMean(g *core.Grid) (*core.Grid, error) {
	src, err := io.GridToMat(g)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mean := gocv.NewMat()
	defer mean.Close()
	window := image.Pt(ssimWindow, ssimWindow)
	if err := gocv.GaussianBlur(src, &mean, window, ssimSigma, ssimSigma, gocv.BorderDefault); err != nil {
		return nil, fmt.Errorf("ssim window: %w", err)
	}
	return io.GridFromMat(mean)
}

func laplacianVariance(src *core.Gray) (float64, error) {
	gray, err := io.GrayToMat(src)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	if err := gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault); err != nil {
		return 0, fmt.Errorf("laplacian: %w", err)
	}
	lap, err := io.GridFromMat(laplacian)
	if err != nil {
		return 0, err
	}
	if len(lap.Data) < 2 {
		return 0, nil
	}
	return stat.Variance(lap.Data, nil), nil
}

// spread is the sample standard deviation, zero for a single sample.
func spread(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.StdDev(x, nil)
}

func product(a, b *core.Grid) *core.Grid {
	out := core.NewGrid(a.Width, a.Height)
	for i := range out.Data {
		out.Data[i] = a.Data[i] * b.Data[i]
	}
	return out
}
