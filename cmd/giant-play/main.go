// giant-play renders the engine to the system audio output. Without a MIDI
// file it plays a short built-in demo phrase; with -midi it schedules the
// note events of a standard MIDI file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-giant/giant"
	"github.com/cwbudde/algo-giant/preset"
)

func main() {
	instrument := flag.String("instrument", "percussion", "Instrument family: horn, percussion, drum, vocal")
	presetPath := flag.String("preset", "", "Preset file path (.yaml or flat text), optional")
	midiPath := flag.String("midi", "", "Standard MIDI file to play, optional")
	sampleRate := flag.Int("sample-rate", 48000, "Playback sample rate in Hz")
	tailSeconds := flag.Float64("tail", 8.0, "Seconds to keep playing after the last event")
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

	if !engine.Prepare(*sampleRate, playBlockFrames) {
		fmt.Fprintf(os.Stderr, "Error: unsupported sample rate %d\n", *sampleRate)
		os.Exit(1)
	}

	var schedule []schedEvent
	if *midiPath != "" {
		schedule, err = loadMIDISchedule(*midiPath, *sampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading MIDI file %q: %v\n", *midiPath, err)
			os.Exit(1)
		}
		fmt.Printf("Playing %s (%d events) on %s...\n", *midiPath, len(schedule), inst)
	} else {
		schedule = demoSchedule(inst, *sampleRate)
		fmt.Printf("Playing demo phrase on %s...\n", inst)
	}

	stream := newStream(engine, schedule)

	op := &oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio device: %v\n", err)
		os.Exit(1)
	}
	<-ready

	player := ctx.NewPlayer(stream)
	player.Play()

	var lastFrame int64
	for _, ev := range schedule {
		if ev.frame > lastFrame {
			lastFrame = ev.frame
		}
	}
	total := time.Duration((float64(lastFrame)/float64(*sampleRate) + *tailSeconds) * float64(time.Second))
	time.Sleep(total)

	if err := player.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing player: %v\n", err)
		os.Exit(1)
	}
}

// loadMIDISchedule converts the note events of an SMF into a frame-stamped
// schedule. Channel information is discarded; every note lands on the one
// engine instance.
func loadMIDISchedule(path string, sampleRate int) ([]schedEvent, error) {
	var schedule []schedEvent
	err := smf.ReadTracksFrom(mustOpen(path)).Do(func(te smf.TrackEvent) {
		var ch, key, vel uint8
		frame := int64(te.AbsMicroSeconds) * int64(sampleRate) / 1e6
		switch {
		case te.Message.GetNoteOn(&ch, &key, &vel):
			if vel == 0 {
				schedule = append(schedule, schedEvent{frame, giant.NoteOff(int(key))})
			} else {
				schedule = append(schedule, schedEvent{frame, giant.NoteOn(int(key), int(vel))})
			}
		case te.Message.GetNoteOff(&ch, &key, &vel):
			schedule = append(schedule, schedEvent{frame, giant.NoteOff(int(key))})
		}
	}).Error()
	if err != nil {
		return nil, err
	}
	if len(schedule) == 0 {
		return nil, fmt.Errorf("no note events found")
	}
	return schedule, nil
}

func mustOpen(path string) *os.File {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return f
}

// demoSchedule builds a short phrase suited to the family: slow low notes
// for horns and vocal, strikes for percussion and drums.
func demoSchedule(inst giant.InstrumentType, sampleRate int) []schedEvent {
	sec := func(t float64) int64 { return int64(t * float64(sampleRate)) }
	switch inst {
	case giant.InstrumentHorn, giant.InstrumentVocal:
		return []schedEvent{
			{sec(0.0), giant.NoteOn(45, 100)},
			{sec(2.0), giant.NoteOff(45)},
			{sec(2.5), giant.NoteOn(52, 90)},
			{sec(4.5), giant.NoteOff(52)},
			{sec(5.0), giant.NoteOn(40, 110)},
			{sec(8.0), giant.NoteOff(40)},
		}
	default:
		return []schedEvent{
			{sec(0.0), giant.NoteOn(45, 110)},
			{sec(1.5), giant.NoteOn(52, 80)},
			{sec(3.0), giant.NoteOn(38, 127)},
			{sec(3.2), giant.NoteOff(38)},
		}
	}
}
