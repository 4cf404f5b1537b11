package chat

import "github.com/rs/zerolog"

// eventSink wraps an Emitter and downgrades write failures into a
// client-gone flag. A failed write means the client disconnected; further
// writes are pointless but the relay may still need to finish upstream
// work and persist.
type eventSink struct {
	emitter Emitter
	logger  zerolog.Logger
	gone    bool
}

func newSink(emitter Emitter, logger zerolog.Logger) *eventSink {
	return &eventSink{emitter: emitter, logger: logger}
}

func (s *eventSink) emit(event interface{}) {
	if s.gone {
		return
	}
	if err := s.emitter.Emit(event); err != nil {
		s.logger.Warn().Err(err).Msg("stream write failed, client presumed gone")
		s.gone = true
	}
}

func (s *eventSink) done() {
	if s.gone {
		return
	}
	if err := s.emitter.Done(); err != nil {
		s.gone = true
	}
}

func (s *eventSink) clientGone() bool {
	return s.gone
}
