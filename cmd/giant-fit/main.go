// giant-fit searches the engine's parameter space for the setting that best
// matches a reference recording, using a Mayfly optimizer over normalized
// knobs and an objective built from spectral, envelope and decay distance.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-giant/giant"
	"github.com/cwbudde/algo-giant/internal/fitcommon"
	"github.com/cwbudde/algo-giant/preset"
)

func main() {
	referencePath := flag.String("reference", "reference/strike.wav", "Reference WAV path")
	instrument := flag.String("instrument", "percussion", "Instrument family: horn, percussion, drum, vocal")
	presetPath := flag.String("preset", "", "Base preset path, optional; seeds the search")
	outputPreset := flag.String("output-preset", "fitted.yaml", "Path to write the best fitted preset")
	outputWAV := flag.String("output-wav", "", "Optional path to write the best candidate render as mono WAV")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	note := flag.Int("note", 57, "MIDI note to fit")
	velocity := flag.Int("velocity", 100, "MIDI velocity for rendering during fit")
	releaseAfter := flag.Float64("release-after", 1.0, "Seconds before NoteOff for each evaluation render")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 120.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	decayDBFS := flag.Float64("decay-dbfs", -90.0, "Auto-stop threshold in dBFS")
	minDuration := flag.Float64("min-duration", 2.0, "Minimum render duration in seconds")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum render duration in seconds")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	flag.Parse()

	inst, err := giant.ParseInstrument(*instrument)
	if err != nil {
		die("invalid instrument: %v", err)
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *maxDuration < *minDuration {
		*maxDuration = *minDuration
	}

	// Seed engine: defaults, then the base preset if given.
	seedEngine := giant.NewEngine(inst)
	if *presetPath != "" {
		p, err := preset.Load(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		skipped, err := preset.Apply(seedEngine, p)
		if err != nil {
			die("failed to apply preset: %v", err)
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "warning: preset has %d unknown parameter(s), skipped\n", skipped)
		}
	}

	refRaw, refSR, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err := fitcommon.ResampleIfNeeded(refRaw, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	defs := knobsForInstrument(inst)
	cfg := &optimizationConfig{
		reference:     ref,
		instrument:    inst,
		baseParams:    seedEngine.Snapshot(),
		defs:          defs,
		initPos:       initialPosition(seedEngine, defs),
		note:          *note,
		velocity:      *velocity,
		releaseAfter:  *releaseAfter,
		sampleRate:    *sampleRate,
		seed:          *seed,
		timeBudget:    *timeBudget,
		maxEvals:      *maxEvals,
		reportEvery:   *reportEvery,
		minDuration:   *minDuration,
		maxDuration:   *maxDuration,
		decayDBFS:     *decayDBFS,
		mayflyVariant: *mayflyVariant,
		mayflyPop:     *mayflyPop,
	}

	fmt.Printf("Fitting %s to %s (%d dims, %d max evals)...\n", inst, *referencePath, len(defs), *maxEvals)

	result, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	if err := writeOutputs(cfg, result, *outputPreset, *outputWAV, *reportPath, *referencePath); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f similarity=%.1f%%\n",
		result.evals, result.elapsed, result.bestMetrics.Score, result.bestMetrics.Similarity*100)
}

func writeOutputs(cfg *optimizationConfig, result *optimizationResult, outputPreset, outputWAV, reportPath, referencePath string) error {
	engine := giant.NewEngine(cfg.instrument)
	engine.Apply(cfg.baseParams)
	if err := applyKnobs(engine, cfg.defs, result.best); err != nil {
		return err
	}
	fitted := preset.FromEngine(engine, "fitted")
	if err := preset.Save(outputPreset, fitted); err != nil {
		return err
	}
	fmt.Printf("Wrote fitted preset %s\n", outputPreset)

	if outputWAV != "" {
		const blockSize = 128
		if !engine.Prepare(cfg.sampleRate, blockSize) {
			return fmt.Errorf("prepare failed at %d Hz", cfg.sampleRate)
		}
		mono := renderCandidate(engine, cfg, blockSize)
		if err := fitcommon.WriteMonoWAV(outputWAV, mono, cfg.sampleRate); err != nil {
			return err
		}
		fmt.Printf("Wrote candidate render %s\n", outputWAV)
	}

	if reportPath == "" {
		reportPath = outputPreset + ".report.json"
	}
	knobs := make(map[string]float64, len(cfg.defs))
	for i, d := range cfg.defs {
		knobs[d.Name] = d.Denormalize(result.best[i])
	}
	report := struct {
		Reference  string             `json:"reference"`
		Instrument string             `json:"instrument"`
		Note       int                `json:"note"`
		Evals      int                `json:"evals"`
		ElapsedSec float64            `json:"elapsed_sec"`
		BestKnobs  map[string]float64 `json:"best_knobs"`
		Metrics    interface{}        `json:"metrics"`
	}{
		Reference:  referencePath,
		Instrument: cfg.instrument.String(),
		Note:       cfg.note,
		Evals:      result.evals,
		ElapsedSec: result.elapsed,
		BestKnobs:  knobs,
		Metrics:    result.bestMetrics,
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(reportPath, b, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote report %s\n", reportPath)
	return nil
}

func die(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
