package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-giant/giant"
	"github.com/cwbudde/algo-giant/preset"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

func main() {
	// Command-line flags
	instrument := flag.String("instrument", "percussion", "Instrument family: horn, percussion, drum, vocal")
	note := flag.Int("note", 57, "MIDI note number (57 = A3 = 220 Hz)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	duration := flag.Float64("duration", 4.0, "Duration in seconds")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop when stereo block RMS falls below this dBFS (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	minDuration := flag.Float64("min-duration", 0.5, "Minimum render duration in seconds when using -decay-dbfs")
	maxDuration := flag.Float64("max-duration", 60.0, "Maximum render duration in seconds when using -decay-dbfs")
	releaseAfter := flag.Float64("release-after", 0.5, "Send NoteOff after this many seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset file path (.yaml or flat text), optional")
	scaleMeters := flag.Float64("scale", 0, "Instrument scale in meters, overrides preset when > 0")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	inst, err := giant.ParseInstrument(*instrument)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	engine := giant.NewEngine(inst)

	if *presetPath != "" {
		p, err := preset.Load(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		skipped, err := preset.Apply(engine, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error applying preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "Warning: preset %q has %d unknown parameter(s), skipped\n", *presetPath, skipped)
		}
	}
	if *scaleMeters > 0 {
		engine.SetParameter("scale.meters", float32(*scaleMeters))
	}

	const blockSize = 128
	if !engine.Prepare(*sampleRate, blockSize) {
		fmt.Fprintf(os.Stderr, "Error: unsupported sample rate %d\n", *sampleRate)
		os.Exit(1)
	}

	fmt.Printf("Rendering %s note %d, velocity %d at %d Hz...\n", inst, *note, *velocity, *sampleRate)

	engine.HandleEvent(giant.NoteOn(*note, *velocity))

	autoStop := !math.IsInf(*decayDBFS, 1)

	var totalFrames int
	if !autoStop {
		totalFrames = int(float64(*sampleRate) * (*duration))
		if totalFrames < 1 {
			totalFrames = 1
		}
	}

	left := make([]float32, blockSize)
	right := make([]float32, blockSize)
	block := [][]float32{left, right}

	initialFrames := totalFrames
	if autoStop {
		initialFrames = int(float64(*sampleRate) * (*minDuration))
		if initialFrames < blockSize {
			initialFrames = blockSize
		}
	}
	samples := make([]float32, 0, initialFrames*2)

	releaseAtFrame := int(float64(*sampleRate) * (*releaseAfter))
	if releaseAtFrame < 0 {
		releaseAtFrame = 0
	}
	noteReleased := false

	framesRendered := 0
	if autoStop {
		minFrames := int(float64(*sampleRate) * (*minDuration))
		maxFrames := int(float64(*sampleRate) * (*maxDuration))
		if maxFrames < minFrames {
			maxFrames = minFrames
		}
		if maxFrames < 1 {
			maxFrames = blockSize
		}

		thresholdLin := math.Pow(10.0, *decayDBFS/20.0)
		belowCount := 0
		if *decayHoldBlocks < 1 {
			*decayHoldBlocks = 1
		}
		for framesRendered < maxFrames {
			framesToRender := blockSize
			if framesRendered+framesToRender > maxFrames {
				framesToRender = maxFrames - framesRendered
			}

			if !noteReleased && framesRendered >= releaseAtFrame {
				engine.HandleEvent(giant.NoteOff(*note))
				noteReleased = true
			}

			engine.Process(block, 2, framesToRender)
			samples = appendInterleaved(samples, left, right, framesToRender)
			framesRendered += framesToRender

			if framesRendered >= minFrames {
				if stereoRMS(left, right, framesToRender) < thresholdLin {
					belowCount++
					if belowCount >= *decayHoldBlocks {
						break
					}
				} else {
					belowCount = 0
				}
			}
		}
		totalFrames = framesRendered
		fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n", totalFrames, float64(totalFrames)/float64(*sampleRate), *decayDBFS)
	} else {
		for framesRendered < totalFrames {
			framesToRender := blockSize
			if framesRendered+framesToRender > totalFrames {
				framesToRender = totalFrames - framesRendered
			}

			if !noteReleased && framesRendered >= releaseAtFrame {
				engine.HandleEvent(giant.NoteOff(*note))
				noteReleased = true
			}

			engine.Process(block, 2, framesToRender)
			samples = appendInterleaved(samples, left, right, framesToRender)
			framesRendered += framesToRender
		}
	}

	// Write to WAV file
	file, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, *sampleRate, 16, 2, 1)
	defer encoder.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  *sampleRate,
			NumChannels: 2,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	if err := encoder.Write(buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, totalFrames)
}

func appendInterleaved(dst []float32, left, right []float32, n int) []float32 {
	for i := 0; i < n; i++ {
		dst = append(dst, left[i], right[i])
	}
	return dst
}

func stereoRMS(left, right []float32, n int) float64 {
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(left[i])*float64(left[i]) + float64(right[i])*float64(right[i])
	}
	return math.Sqrt(sum / float64(2*n))
}
