package ai

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// LiveConfig configures a duplex low-latency audio session.
type LiveConfig struct {
	URL               string
	APIKey            string
	SystemInstruction string
	Voice             string
	Logger            zerolog.Logger
}

type liveOutbound struct {
	Type  string `json:"type"`
	Audio string `json:"audio,omitempty"`
	Setup *struct {
		SystemInstruction string `json:"system_instruction,omitempty"`
		Voice             string `json:"voice,omitempty"`
	} `json:"setup,omitempty"`
}

type liveInbound struct {
	Type  string `json:"type"`
	Audio string `json:"audio,omitempty"`
}

// LiveSession is a duplex audio conversation: microphone chunks are
// forwarded continuously while connected, inbound chunks are decoded and
// scheduled gaplessly, and an interruption signal clears all pending output.
type LiveSession struct {
	conn     *websocket.Conn
	playback *Playback
	output   chan ScheduledChunk
	logger   zerolog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// DialLive opens the duplex session and starts the inbound reader.
func DialLive(cfg LiveConfig) (*LiveSession, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("live session url is required")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai gateway not configured")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.Dial(cfg.URL, header)
	if err != nil {
		return nil, fmt.Errorf("dial live session: %w", err)
	}

	session := &LiveSession{
		conn:     conn,
		playback: NewPlayback(nil),
		output:   make(chan ScheduledChunk, 32),
		logger:   cfg.Logger.With().Str("component", "ai_live").Logger(),
		done:     make(chan struct{}),
	}

	setup := liveOutbound{Type: "setup"}
	setup.Setup = &struct {
		SystemInstruction string `json:"system_instruction,omitempty"`
		Voice             string `json:"voice,omitempty"`
	}{SystemInstruction: cfg.SystemInstruction, Voice: cfg.Voice}

	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send live setup: %w", err)
	}

	go session.readLoop()

	return session, nil
}

// SendAudio forwards one raw PCM microphone chunk.
func (s *LiveSession) SendAudio(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("live session closed")
	}

	message := liveOutbound{
		Type:  "audio",
		Audio: base64.StdEncoding.EncodeToString(pcm),
	}

	return s.conn.WriteJSON(message)
}

// Output delivers inbound chunks with their assigned play windows. The
// channel closes when the session ends.
func (s *LiveSession) Output() <-chan ScheduledChunk {
	return s.output
}

// Close disconnects, stopping any in-flight scheduled audio. It is safe to
// call more than once.
func (s *LiveSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.playback.Interrupt()
	err := s.conn.Close()
	<-s.done

	return err
}

func (s *LiveSession) readLoop() {
	defer close(s.done)
	defer close(s.output)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				s.logger.Warn().Err(err).Msg("live session read failed")
			}
			return
		}

		var message liveInbound
		if err := json.Unmarshal(payload, &message); err != nil {
			s.logger.Warn().Err(err).Msg("invalid live session message")
			continue
		}

		switch message.Type {
		case "audio":
			pcm, err := base64.StdEncoding.DecodeString(message.Audio)
			if err != nil {
				s.logger.Warn().Err(err).Msg("invalid live audio payload")
				continue
			}

			chunk := s.playback.Schedule(pcm)
			select {
			case s.output <- chunk:
			default:
				// slow consumer, drop
			}
		case "interrupted":
			// stop and clear everything scheduled, reset the cursor
			s.playback.Interrupt()
		}
	}
}
