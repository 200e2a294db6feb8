package main

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cwbudde/algo-giant/giant"
)

const playBlockFrames = 128

type schedEvent struct {
	frame int64
	event giant.Event
}

// stream adapts the engine to oto's pull model: each Read renders interleaved
// stereo float32 frames, applying scheduled events between blocks. The oto
// player drives Read from its own goroutine; all engine access happens there.
type stream struct {
	engine   *giant.Engine
	schedule []schedEvent
	next     int
	frame    int64

	left  []float32
	right []float32
	block [][]float32
}

func newStream(engine *giant.Engine, schedule []schedEvent) *stream {
	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].frame < schedule[j].frame
	})
	left := make([]float32, playBlockFrames)
	right := make([]float32, playBlockFrames)
	return &stream{
		engine:   engine,
		schedule: schedule,
		left:     left,
		right:    right,
		block:    [][]float32{left, right},
	}
}

// Read renders len(p)/8 stereo frames as little-endian float32 pairs. It
// never returns an error; a drained schedule just renders the decaying tail.
func (s *stream) Read(p []byte) (int, error) {
	frames := len(p) / 8
	written := 0
	for frames > 0 {
		n := frames
		if n > playBlockFrames {
			n = playBlockFrames
		}

		for s.next < len(s.schedule) && s.schedule[s.next].frame <= s.frame {
			s.engine.HandleEvent(s.schedule[s.next].event)
			s.next++
		}

		s.engine.Process(s.block, 2, n)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(p[written:], math.Float32bits(s.left[i]))
			binary.LittleEndian.PutUint32(p[written+4:], math.Float32bits(s.right[i]))
			written += 8
		}
		s.frame += int64(n)
		frames -= n
	}
	return written, nil
}
