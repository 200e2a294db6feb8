package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-giant/analysis"
	"github.com/cwbudde/algo-giant/giant"
)

type optimizationConfig struct {
	reference  []float64
	instrument giant.InstrumentType
	baseParams map[string]float32
	defs       []knobDef
	initPos    []float64

	note         int
	velocity     int
	releaseAfter float64
	sampleRate   int

	seed          int64
	timeBudget    float64
	maxEvals      int
	reportEvery   int
	minDuration   float64
	maxDuration   float64
	decayDBFS     float64
	mayflyVariant string
	mayflyPop     int
}

type optimizationResult struct {
	best        []float64
	bestMetrics analysis.Metrics
	evals       int
	elapsed     float64
}

// runOptimization drives repeated Mayfly rounds until the eval or time
// budget runs out. Each objective evaluation renders the candidate and
// scores it against the reference; rounds restart with fresh populations
// seeded near the best position found so far.
func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	res := &optimizationResult{
		best:        append([]float64(nil), cfg.initPos...),
		bestMetrics: analysis.Metrics{Score: math.Inf(1)},
	}

	start := time.Now()
	deadline := start.Add(time.Duration(cfg.timeBudget * float64(time.Second)))

	evaluate := func(pos []float64) float64 {
		if res.evals >= cfg.maxEvals || time.Now().After(deadline) {
			return math.Inf(1)
		}
		res.evals++

		m, err := renderAndScore(cfg, pos)
		if err != nil {
			return math.Inf(1)
		}
		if m.Score < res.bestMetrics.Score {
			res.bestMetrics = m
			res.best = append(res.best[:0], pos...)
		}
		if cfg.reportEvery > 0 && res.evals%cfg.reportEvery == 0 {
			fmt.Printf("eval %d: score=%.4f best=%.4f similarity=%.1f%%\n",
				res.evals, m.Score, res.bestMetrics.Score, res.bestMetrics.Similarity*100)
		}
		return m.Score
	}

	round := 0
	for res.evals < cfg.maxEvals && time.Now().Before(deadline) {
		round++
		remaining := cfg.maxEvals - res.evals
		iters := maxInt(1, remaining/(2*cfg.mayflyPop))
		if iters > 50 {
			iters = 50
		}

		mc, err := newMayflyConfig(cfg.mayflyVariant, cfg.mayflyPop, len(cfg.defs), iters)
		if err != nil {
			return nil, err
		}
		mc.Rand = rand.New(rand.NewSource(cfg.seed + int64(round)*7919))
		mc.ObjectiveFunc = evaluate

		if _, err := runMayfly(mc); err != nil {
			fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
			break
		}
	}

	res.elapsed = time.Since(start).Seconds()
	if math.IsInf(res.bestMetrics.Score, 1) {
		return nil, fmt.Errorf("no successful evaluations")
	}
	return res, nil
}

// renderAndScore renders one candidate and compares it to the reference.
func renderAndScore(cfg *optimizationConfig, pos []float64) (analysis.Metrics, error) {
	engine := giant.NewEngineVoices(cfg.instrument, 4)
	engine.Apply(cfg.baseParams)
	if err := applyKnobs(engine, cfg.defs, pos); err != nil {
		return analysis.Metrics{}, err
	}

	const blockSize = 128
	if !engine.Prepare(cfg.sampleRate, blockSize) {
		return analysis.Metrics{}, fmt.Errorf("prepare failed at %d Hz", cfg.sampleRate)
	}

	mono := renderCandidate(engine, cfg, blockSize)
	return analysis.Compare(cfg.reference, mono, cfg.sampleRate), nil
}

func renderCandidate(engine *giant.Engine, cfg *optimizationConfig, blockSize int) []float64 {
	left := make([]float32, blockSize)
	right := make([]float32, blockSize)
	block := [][]float32{left, right}

	minFrames := int(cfg.minDuration * float64(cfg.sampleRate))
	maxFrames := int(cfg.maxDuration * float64(cfg.sampleRate))
	if maxFrames < minFrames {
		maxFrames = minFrames
	}
	releaseAt := int(cfg.releaseAfter * float64(cfg.sampleRate))
	threshold := math.Pow(10.0, cfg.decayDBFS/20.0)

	engine.HandleEvent(giant.NoteOn(cfg.note, cfg.velocity))

	mono := make([]float64, 0, minFrames)
	released := false
	belowCount := 0
	for frames := 0; frames < maxFrames; frames += blockSize {
		n := blockSize
		if frames+n > maxFrames {
			n = maxFrames - frames
		}
		if !released && frames >= releaseAt {
			engine.HandleEvent(giant.NoteOff(cfg.note))
			released = true
		}
		engine.Process(block, 2, n)

		var sum float64
		for i := 0; i < n; i++ {
			s := 0.5 * (float64(left[i]) + float64(right[i]))
			mono = append(mono, s)
			sum += s * s
		}

		if frames >= minFrames {
			if math.Sqrt(sum/float64(n)) < threshold {
				belowCount++
				if belowCount >= 6 {
					break
				}
			} else {
				belowCount = 0
			}
		}
	}
	return mono
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
