// Package pipeline chains registered algorithms into sequential or
// layer-based processing runs and scores every step.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"image-signal-processing/internal/algorithms"
	"image-signal-processing/internal/core"
	"image-signal-processing/internal/layers"
	"image-signal-processing/internal/metrics"
)

// ProcessingStep represents a sequential processing step
type ProcessingStep struct {
	Algorithm  string
	Parameters map[string]interface{}
	Enabled    bool
}

// Mode selects how Run combines the configured work.
type Mode int

const (
	ModeSequential Mode = iota
	ModeLayers
)

func (m Mode) String() string {
	if m == ModeLayers {
		return "layer"
	}
	return "sequential"
}

// Result is the outcome of a run.
type Result struct {
	Output *core.Gray
	// Metrics holds per-step scores keyed "<index>_<algorithm>_<metric>"
	// plus whole-run scores under their plain names.
	Metrics  map[string]float64
	Duration time.Duration
}

// Pipeline combines sequential and layer-based processing
type Pipeline struct {
	mu          sync.RWMutex
	steps       []ProcessingStep
	layerStack  *layers.LayerStack
	regions     *core.RegionManager
	metricsEval *metrics.Evaluator
	logger      *logrus.Logger
	debugger    *Debugger
	mode        Mode
}

// New creates an empty sequential pipeline. A nil logger discards output.
func New(logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	regions := core.NewRegionManager()
	return &Pipeline{
		steps:       make([]ProcessingStep, 0),
		layerStack:  layers.NewLayerStack(regions),
		regions:     regions,
		metricsEval: metrics.NewEvaluator(),
		logger:      logger,
		debugger:    NewDebugger(logger),
	}
}

// Regions exposes the selections used by region-restricted layers.
func (p *Pipeline) Regions() *core.RegionManager {
	return p.regions
}

// Debugger returns the operation tracker of this pipeline.
func (p *Pipeline) Debugger() *Debugger {
	return p.debugger
}

// SetProcessingMode switches between sequential and layer-based processing
func (p *Pipeline) SetProcessingMode(mode Mode) {
	p.mu.Lock()
	old := p.mode
	p.mode = mode
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"old_mode": old.String(),
		"new_mode": mode.String(),
	}).Info("Processing mode changed")
	p.debugger.LogModeChange(old.String(), mode.String(), p.Layers().Len())
}

// AddStep validates and appends a sequential processing step.
func (p *Pipeline) AddStep(algorithm string, parameters map[string]interface{}) error {
	start := time.Now()
	if err := algorithms.ValidateParameters(algorithm, parameters); err != nil {
		p.logger.WithError(err).WithField("algorithm", algorithm).Error("Rejected sequential step")
		p.debugger.LogOperation("add_step", false, time.Since(start), map[string]interface{}{"algorithm": algorithm}, err)
		return fmt.Errorf("invalid step: %w", err)
	}

	p.mu.Lock()
	p.steps = append(p.steps, ProcessingStep{
		Algorithm:  algorithm,
		Parameters: parameters,
		Enabled:    true,
	})
	count := len(p.steps)
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"algorithm":  algorithm,
		"step_count": count,
	}).Info("Sequential step added")
	p.debugger.LogOperation("add_step", true, time.Since(start), map[string]interface{}{"algorithm": algorithm}, nil)
	return nil
}

// AddLayer adds a processing layer (layer mode)
func (p *Pipeline) AddLayer(name, algorithm string, params map[string]interface{}, regionID string) (string, error) {
	start := time.Now()
	layerID, err := p.Layers().AddLayer(name, algorithm, params, regionID)
	p.debugger.LogLayerAddition(layerID, algorithm, params, err == nil, time.Since(start), err)
	if err != nil {
		p.logger.WithError(err).WithField("algorithm", algorithm).Error("Rejected layer")
		return "", fmt.Errorf("invalid layer: %w", err)
	}
	p.logger.WithFields(logrus.Fields{
		"layer_id":  layerID,
		"algorithm": algorithm,
		"region_id": regionID,
	}).Info("Layer added")
	return layerID, nil
}

// Layers returns the layer stack used in layer mode.
func (p *Pipeline) Layers() *layers.LayerStack {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.layerStack
}

// SetStepEnabled toggles the step at index i.
func (p *Pipeline) SetStepEnabled(i int, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.steps) {
		return fmt.Errorf("%w: step index %d out of range [0,%d)", core.ErrInvalidParameter, i, len(p.steps))
	}
	p.steps[i].Enabled = enabled
	return nil
}

// GetSteps returns sequential processing steps
func (p *Pipeline) GetSteps() []ProcessingStep {
	p.mu.RLock()
	defer p.mu.RUnlock()

	steps := make([]ProcessingStep, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// ClearAll clears both steps and layers
func (p *Pipeline) ClearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.debugger.LogEvent("clear_all", p.mode.String(), map[string]interface{}{
		"previous_layer_count": p.layerStack.Len(),
		"previous_step_count":  len(p.steps),
	})
	p.steps = make([]ProcessingStep, 0)
	p.layerStack = layers.NewLayerStack(p.regions)
}

// Run processes input in the current mode. The input is never modified.
// Cancellation is checked between steps.
func (p *Pipeline) Run(ctx context.Context, input *core.Gray) (*Result, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	mode, stack := p.mode, p.layerStack
	p.mu.RUnlock()

	start := time.Now()
	p.debugger.LogProcessingStart(mode.String(), stack.Len(), sizeOf(input))

	var (
		out    *core.Gray
		scores map[string]float64
		err    error
	)
	if mode == ModeLayers {
		out, err = stack.ProcessLayers(input)
		scores = make(map[string]float64)
	} else {
		out, scores, err = p.processSequential(ctx, input)
	}
	if err != nil {
		p.debugger.LogProcessingComplete(mode.String(), false, "", nil)
		return nil, err
	}

	for name, v := range p.metricsEval.CalculateAll(input, out) {
		scores[name] = v
	}
	p.debugger.LogProcessingComplete(mode.String(), true, sizeOf(out), scores)

	return &Result{Output: out, Metrics: scores, Duration: time.Since(start)}, nil
}

// processSequential applies sequential processing steps
func (p *Pipeline) processSequential(ctx context.Context, input *core.Gray) (*core.Gray, map[string]float64, error) {
	current := input.Clone()
	processMetrics := make(map[string]float64)

	steps := p.GetSteps()
	p.logger.WithField("step_count", len(steps)).Debug("Processing sequential steps")

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			p.logger.WithField("step", i).Debug("Sequential processing cancelled")
			return nil, nil, err
		}

		log := p.logger.WithFields(logrus.Fields{"step": i, "algorithm": step.Algorithm})
		if !step.Enabled {
			log.Debug("Skipping disabled step")
			continue
		}
		if step.Algorithm == "hist_equalize" && algorithms.IsConstant(current) {
			log.Debug("Constant input, equalization leaves it unchanged")
		}

		stepStart := time.Now()
		result, err := algorithms.Apply(step.Algorithm, current, step.Parameters)
		if err != nil {
			log.WithError(err).Error("Sequential step failed")
			p.debugger.LogOperation("process_step", false, time.Since(stepStart), map[string]interface{}{"step": i, "algorithm": step.Algorithm}, err)
			return nil, nil, fmt.Errorf("step %d (%s): %w", i, step.Algorithm, err)
		}
		p.debugger.LogOperation("process_step", true, time.Since(stepStart), map[string]interface{}{"step": i, "algorithm": step.Algorithm}, nil)

		for k, v := range p.metricsEval.EvaluateStep(current, result, step.Algorithm) {
			processMetrics[fmt.Sprintf("%d_%s_%s", i, step.Algorithm, k)] = v
		}

		current = result
		log.WithField("duration_ms", time.Since(stepStart).Milliseconds()).Debug("Step completed")
	}

	return current, processMetrics, nil
}

func sizeOf(g *core.Gray) string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
