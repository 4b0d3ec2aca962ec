// Package metrics scores a processed image against its source.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"image-signal-processing/internal/core"
)

// ErrUnknownMetric is returned when a metric name is not registered.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric compares a processed buffer with the buffer it came from.
type Metric interface {
	// Calculate fails with core.ErrShapeMismatch on differing shapes.
	Calculate(original, processed *core.Gray) (float64, error)

	GetName() string
	GetDescription() string

	// GetRange is the span used to normalize values into a score.
	GetRange() (float64, float64)
	IsHigherBetter() bool
}

// Evaluator holds named metrics.
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator returns an evaluator with the default metrics registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

// RegisterDefaultMetrics adds psnr, ssim, mse, contrast_ratio and sharpness.
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("ssim", NewSSIM())
	e.Register("mse", NewMSE())
	e.Register("contrast_ratio", NewContrastRatio())
	e.Register("sharpness", NewSharpness())
}

// Register adds or replaces a metric.
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names in sorted order.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate runs one metric by name.
func (e *Evaluator) Calculate(name string, original, processed *core.Gray) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
	return metric.Calculate(original, processed)
}

// CalculateAll calculates all registered metrics. Metrics that fail are
// left out of the result.
func (e *Evaluator) CalculateAll(original, processed *core.Gray) map[string]float64 {
	results := make(map[string]float64)
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}
	return results
}

// EvaluateStep scores one pipeline step. Beyond psnr and ssim it adds the
// metric most telling for the kind of step.
func (e *Evaluator) EvaluateStep(before, after *core.Gray, stepName string) map[string]float64 {
	metrics := make(map[string]float64)

	if psnr, err := e.Calculate("psnr", before, after); err == nil {
		metrics["psnr"] = psnr
	}
	if ssim, err := e.Calculate("ssim", before, after); err == nil {
		metrics["ssim"] = ssim
	}

	switch stepName {
	case "gaussian", "median", "mean", "notch":
		if contrast, err := e.Calculate("contrast_ratio", before, after); err == nil {
			metrics["contrast_preservation"] = contrast
		}

	case "sobel_sharpen", "hist_equalize", "contrast":
		if sharpness, err := e.Calculate("sharpness", before, after); err == nil {
			metrics["edge_gain"] = sharpness
		}

	case "erosion", "dilation", "opening", "closing":
		if sharpness, err := e.Calculate("sharpness", before, after); err == nil {
			metrics["edge_preservation"] = sharpness
		}
	}

	return metrics
}

// GetMetricInfo lists every registered metric.
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)
	for name, metric := range e.metrics {
		lo, hi := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{lo, hi},
			HigherBetter: metric.IsHigherBetter(),
		}
	}
	return info
}

// MetricInfo describes a registered metric.
type MetricInfo struct {
	Name         string
	Description  string
	Range        [2]float64 // [min, max]
	HigherBetter bool
}

// QualityReport is the outcome of GenerateReport.
type QualityReport struct {
	OverallScore float64            `json:"overall_score"`
	Metrics      map[string]float64 `json:"metrics"`
	Analysis     QualityAnalysis    `json:"analysis"`
	Timestamp    string             `json:"timestamp"`
}

// QualityAnalysis grades a report.
type QualityAnalysis struct {
	QualityLevel string   `json:"quality_level"` // "excellent", "good", "fair", "poor"
	Issues       []string `json:"issues"`
	Suggestions  []string `json:"suggestions"`
}

// GenerateReport scores processed against original and grades the result.
func (e *Evaluator) GenerateReport(original, processed *core.Gray) QualityReport {
	metrics := e.CalculateAll(original, processed)
	overall := e.calculateOverallScore(metrics)

	return QualityReport{
		OverallScore: overall,
		Metrics:      metrics,
		Analysis:     e.analyzeQuality(metrics, overall),
		Timestamp:    time.Now().Format("2006-01-02 15:04:05"),
	}
}

// calculateOverallScore is a weighted mean of normalized metrics on a
// 0-100 scale.
func (e *Evaluator) calculateOverallScore(metrics map[string]float64) float64 {
	weights := []struct {
		name   string
		weight float64
	}{
		{"psnr", 0.35},
		{"ssim", 0.35},
		{"contrast_ratio", 0.15},
		{"sharpness", 0.15},
	}

	var scores, ws []float64
	for _, w := range weights {
		if value, exists := metrics[w.name]; exists {
			scores = append(scores, e.normalizeMetric(w.name, value))
			ws = append(ws, w.weight)
		}
	}
	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, ws) * 100
}

// normalizeMetric maps a metric value onto [0,1] with 1 always best.
func (e *Evaluator) normalizeMetric(name string, value float64) float64 {
	metric, exists := e.metrics[name]
	if !exists {
		return 0
	}

	lo, hi := metric.GetRange()
	if math.IsNaN(value) {
		return 0
	}
	value = math.Max(lo, math.Min(hi, value))
	if hi == lo {
		return 1.0
	}

	normalized := (value - lo) / (hi - lo)
	if !metric.IsHigherBetter() {
		normalized = 1.0 - normalized
	}
	return normalized
}

func (e *Evaluator) analyzeQuality(metrics map[string]float64, overall float64) QualityAnalysis {
	analysis := QualityAnalysis{
		Issues:      make([]string, 0),
		Suggestions: make([]string, 0),
	}

	switch {
	case overall >= 90:
		analysis.QualityLevel = "excellent"
	case overall >= 75:
		analysis.QualityLevel = "good"
	case overall >= 60:
		analysis.QualityLevel = "fair"
	default:
		analysis.QualityLevel = "poor"
	}

	if psnr, exists := metrics["psnr"]; exists && psnr < 20 {
		analysis.Issues = append(analysis.Issues, "Low PSNR indicates significant noise or distortion")
		analysis.Suggestions = append(analysis.Suggestions, "Add a median or Gaussian step before enhancement")
	}
	if ssim, exists := metrics["ssim"]; exists && ssim < 0.7 {
		analysis.Issues = append(analysis.Issues, "Low SSIM indicates poor structural similarity")
		analysis.Suggestions = append(analysis.Suggestions, "Reduce filter strength to preserve image structure")
	}
	if contrast, exists := metrics["contrast_ratio"]; exists && contrast < 0.5 {
		analysis.Issues = append(analysis.Issues, "Output lost more than half of the input contrast")
		analysis.Suggestions = append(analysis.Suggestions, "Follow smoothing with histogram equalization or a contrast stretch")
	}

	return analysis
}
