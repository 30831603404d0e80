package ai

import (
	"sync"
	"time"
)

// PCM format of the live audio session: 16-bit mono.
const (
	liveSampleRate    = 24000
	liveBytesPerFrame = 2
)

// ScheduledChunk is one inbound audio chunk with its assigned play window.
type ScheduledChunk struct {
	PCM      []byte
	StartAt  time.Time
	Duration time.Duration
}

// Playback schedules inbound audio chunks back-to-back: each chunk starts at
// the later of "now" and the end of the previously scheduled chunk, so
// output is gapless. An interruption clears everything scheduled and resets
// the time cursor.
type Playback struct {
	mu        sync.Mutex
	now       func() time.Time
	cursor    time.Time
	scheduled []ScheduledChunk
}

// NewPlayback constructs a playback scheduler. now may be nil for wall time.
func NewPlayback(now func() time.Time) *Playback {
	if now == nil {
		now = time.Now
	}

	return &Playback{now: now}
}

// Schedule assigns the chunk its play window and returns it.
func (p *Playback) Schedule(pcm []byte) ScheduledChunk {
	duration := PCMDuration(len(pcm))

	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	if p.cursor.After(start) {
		start = p.cursor
	}
	p.cursor = start.Add(duration)

	chunk := ScheduledChunk{PCM: pcm, StartAt: start, Duration: duration}
	p.scheduled = append(p.scheduled, chunk)

	return chunk
}

// Interrupt drops all scheduled output immediately and resets the cursor,
// the required response to an explicit interruption signal from the remote
// side.
func (p *Playback) Interrupt() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.scheduled = nil
	p.cursor = time.Time{}
}

// Scheduled returns a copy of the chunks currently queued for output.
func (p *Playback) Scheduled() []ScheduledChunk {
	p.mu.Lock()
	defer p.mu.Unlock()

	chunks := make([]ScheduledChunk, len(p.scheduled))
	copy(chunks, p.scheduled)
	return chunks
}

// PCMDuration converts a 16-bit mono PCM byte length to play time.
func PCMDuration(byteLen int) time.Duration {
	frames := byteLen / liveBytesPerFrame
	return time.Duration(frames) * time.Second / liveSampleRate
}
