// Package session owns the lesson lifecycle on the client side: one
// successful start fixes the language pair and level for good, then
// turns are submitted one at a time against those parameters.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nvoisard/bilingo/internal/errors"
	"github.com/nvoisard/bilingo/internal/lang"
	"github.com/nvoisard/bilingo/internal/tutor"
)

// API is the backend surface the controller drives. StartSession opens
// a lesson and returns its identifier plus the greeting turn;
// SubmitTurn uploads one utterance and returns the tutor's reply.
type API interface {
	StartSession(ctx context.Context, native, target lang.Code, level string) (string, tutor.Turn, error)
	SubmitTurn(ctx context.Context, session tutor.Session, audio []byte) (tutor.Turn, error)
}

// Controller guards the session parameters. Parameters are validated
// before the first request, latched after it, and never touched by turn
// submission, so a failed turn can always be retried against intact
// state.
type Controller struct {
	api API
	log zerolog.Logger

	mu      sync.Mutex
	started bool
	busy    bool
	session tutor.Session
}

// NewController creates an unstarted controller.
func NewController(api API, log zerolog.Logger) *Controller {
	return &Controller{api: api, log: log}
}

// Started reports whether a session has been opened.
func (c *Controller) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Session returns a copy of the current session parameters and whether
// a session exists yet.
func (c *Controller) Session() (tutor.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.started
}

// Start opens a lesson. On failure nothing is stored and the caller may
// retry with the same or different parameters; on success the
// parameters are latched and a second Start is refused. The returned
// greeting always carries at least one text segment.
func (c *Controller) Start(ctx context.Context, native, target lang.Code, level string) (tutor.Turn, error) {
	if err := lang.ValidatePair(native, target); err != nil {
		return tutor.Turn{}, errors.Wrap(errors.ErrValidation, "invalid language pair", err)
	}
	if !lang.ValidLevel(level) {
		return tutor.Turn{}, errors.New(errors.ErrValidation, "unknown proficiency level: "+level)
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return tutor.Turn{}, errors.New(errors.ErrValidation, "session already started")
	}
	c.mu.Unlock()

	id, greeting, err := c.api.StartSession(ctx, native, target, level)
	if err != nil {
		c.log.Warn().Err(err).Msg("session start failed")
		return tutor.Turn{}, err
	}

	c.mu.Lock()
	c.started = true
	c.session = tutor.Session{ID: id, NativeLang: native, TargetLang: target, Level: level}
	c.mu.Unlock()

	c.log.Info().Str("session_id", id).
		Str("native", string(native)).Str("target", string(target)).Str("level", level).
		Msg("session started")

	if len(greeting.Segments) == 0 {
		greeting.Segments = []tutor.Segment{tutor.Acknowledgment(native)}
	}
	return greeting, nil
}

// Submit uploads one captured utterance and returns the tutor's reply.
// It refuses to run before Start has succeeded and while another turn
// is in flight. A failed submit leaves the session parameters exactly
// as they were; the caller renders the error and may try again.
func (c *Controller) Submit(ctx context.Context, audio []byte) (tutor.Turn, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return tutor.Turn{}, errors.New(errors.ErrValidation, "session not started")
	}
	if c.busy {
		c.mu.Unlock()
		return tutor.Turn{}, errors.New(errors.ErrValidation, "a turn is already in flight")
	}
	c.busy = true
	session := c.session
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	turn, err := c.api.SubmitTurn(ctx, session, audio)
	if err != nil {
		c.log.Warn().Err(err).Str("session_id", session.ID).Msg("turn submit failed")
		return tutor.Turn{}, err
	}

	if len(turn.Segments) == 0 {
		turn.Segments = []tutor.Segment{tutor.Acknowledgment(session.NativeLang)}
	}
	return turn, nil
}
