// Image signal processing demo: synthesizes a striped, noisy test image in
// memory, restores it with a sequential pipeline and logs quality metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"slices"

	"github.com/sirupsen/logrus"

	"image-signal-processing/internal/algorithms"
	"image-signal-processing/internal/config"
	"image-signal-processing/internal/core"
	"image-signal-processing/internal/metrics"
	"image-signal-processing/internal/pipeline"
	"image-signal-processing/internal/spectral"
)

const (
	AppName    = "Image Signal Processing"
	AppVersion = "1.0.0"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg := config.Default()
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(out)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.NewLogger(out)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": cfg.Debug,
	}).Info("Starting " + AppName)

	clean, err := synthesize(cfg.Demo)
	if err != nil {
		return fmt.Errorf("synthesize input: %w", err)
	}
	noisy, err := algorithms.SaltPepperNoise(clean, 0.01, 0.5, algorithms.NewSource(cfg.Seed))
	if err != nil {
		return fmt.Errorf("degrade input: %w", err)
	}

	p := pipeline.New(logger)
	steps := []struct {
		algorithm string
		params    map[string]interface{}
	}{
		{"median", map[string]interface{}{"kernel_size": 3}},
		{"notch", map[string]interface{}{
			"num_peaks":      cfg.Notch.NumPeaks,
			"radius":         cfg.Notch.Radius,
			"exclude_radius": cfg.Notch.ExcludeRadius,
		}},
		{"sobel_sharpen", map[string]interface{}{"alpha": 0.2}},
	}
	for _, s := range steps {
		if err := p.AddStep(s.algorithm, s.params); err != nil {
			return err
		}
	}

	res, err := p.Run(ctx, noisy)
	if err != nil {
		return err
	}
	logger.WithFields(toFields(res.Metrics)).WithField("duration_ms", res.Duration.Milliseconds()).
		Info("Pipeline finished")

	report := metrics.NewEvaluator().GenerateReport(clean, res.Output)
	logger.WithFields(logrus.Fields{
		"overall_score": report.OverallScore,
		"quality_level": report.Analysis.QualityLevel,
		"issues":        report.Analysis.Issues,
	}).Info("Restoration quality against the clean image")

	if err := binarizeLeftHalf(ctx, logger, p, res.Output); err != nil {
		return err
	}
	if err := logSpectrum(logger, noisy, cfg.Notch); err != nil {
		return err
	}
	if err := logColor(logger, clean); err != nil {
		return err
	}

	if cfg.Debug {
		p.Debugger().WriteStatus(out)
	}
	logger.Info("Application shutting down gracefully")
	return nil
}

// binarizeLeftHalf reruns the pipeline in layer mode with a 2-D Otsu layer
// restricted to the left half of the restored image.
func binarizeLeftHalf(ctx context.Context, logger *logrus.Logger, p *pipeline.Pipeline, restored *core.Gray) error {
	region := p.Regions().CreateRectangleSelection(image.Rect(0, 0, restored.Width/2, restored.Height))
	if _, err := p.AddLayer("binarize", "twod_otsu", map[string]interface{}{"window_radius": 3}, region); err != nil {
		return err
	}
	p.SetProcessingMode(pipeline.ModeLayers)

	res, err := p.Run(ctx, restored)
	if err != nil {
		return err
	}
	white := 0
	for _, v := range res.Output.Pix[:restored.Width/2] {
		if v == 255 {
			white++
		}
	}
	logger.WithFields(logrus.Fields{
		"region":          region,
		"first_row_white": white,
		"ssim":            res.Metrics["ssim"],
	}).Info("Layer pass finished")
	return nil
}

// synthesize builds a diagonal gradient with vertical sinusoidal stripes.
func synthesize(demo config.DemoConfig) (*core.Gray, error) {
	if err := core.ValidateDims(demo.Width, demo.Height); err != nil {
		return nil, err
	}
	g := core.NewGray(demo.Width, demo.Height)
	span := float64(demo.Width + demo.Height)
	for y := 0; y < demo.Height; y++ {
		for x := 0; x < demo.Width; x++ {
			base := 64 + 128*float64(x+y)/span
			stripe := demo.Amplitude * math.Sin(2*math.Pi*float64(x)/float64(demo.Period))
			g.Set(x, y, core.ClampByte(base+stripe))
		}
	}
	return g, nil
}

func logSpectrum(logger *logrus.Logger, src *core.Gray, notch config.NotchConfig) error {
	spectrum, err := spectral.Transform(src)
	if err != nil {
		return err
	}
	magnitude, err := spectrum.Magnitude()
	if err != nil {
		return err
	}
	mask, err := spectral.BuildNotchMask(magnitude, notch.NumPeaks, notch.Radius, notch.ExcludeRadius)
	if err != nil {
		return err
	}
	for i, peak := range mask.Peaks {
		logger.WithFields(logrus.Fields{
			"peak":      i,
			"x":         peak.X,
			"y":         peak.Y,
			"magnitude": peak.Magnitude,
		}).Debug("Suppressed spectral peak")
	}
	logger.WithField("peaks", len(mask.Peaks)).Info("Notch mask built")
	return nil
}

func logColor(logger *logrus.Logger, gray *core.Gray) error {
	tinted, err := algorithms.Gamma(gray, 1, 0.8)
	if err != nil {
		return err
	}
	rgb, err := core.MergeColor(gray, tinted, gray)
	if err != nil {
		return err
	}
	_, s, intensity, err := algorithms.RGBToHSI(rgb)
	if err != nil {
		return err
	}
	y, cr, cb, err := algorithms.RGBToYCrCb(rgb)
	if err != nil {
		return err
	}
	if slices.Max(s.Pix) == 0 {
		logger.WithField("mean_intensity", mean(intensity)).Debug("Achromatic input, saturation is zero")
	}
	logger.WithFields(logrus.Fields{
		"mean_saturation": mean(s),
		"mean_intensity":  mean(intensity),
		"mean_luma":       mean(y),
		"mean_cr":         mean(cr),
		"mean_cb":         mean(cb),
	}).Info("Color space summary")
	return nil
}

func mean(g *core.Gray) float64 {
	sum := 0
	for _, v := range g.Pix {
		sum += int(v)
	}
	return float64(sum) / float64(len(g.Pix))
}

func toFields(m map[string]float64) logrus.Fields {
	f := make(logrus.Fields, len(m))
	for k, v := range m {
		// JSON has no infinity
		if math.IsInf(v, 0) {
			f[k] = fmt.Sprint(v)
			continue
		}
		f[k] = v
	}
	return f
}
