// Package playback plays a turn's audio segments strictly one after
// another. Sequential, non-overlapping delivery is what keeps a
// bilingual explanation intelligible, so the engine never skips ahead
// past a broken clip.
package playback

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nvoisard/bilingo/internal/errors"
	"github.com/nvoisard/bilingo/internal/lang"
	"github.com/nvoisard/bilingo/internal/tutor"
)

// Clip is one fetched, ready-to-play audio element.
type Clip struct {
	Lang lang.Code
	URL  string
	Data []byte
}

// Player plays a single clip and blocks until it finishes or fails.
type Player interface {
	Play(ctx context.Context, clip Clip) error
}

// Fetcher resolves a clip reference into raw audio bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Engine walks an audio-segment sequence with a single cursor: fetch a
// clip, play it to completion, advance. One sequence at a time; a
// second Play while one is active is refused rather than interleaved.
type Engine struct {
	player  Player
	fetcher Fetcher
	log     zerolog.Logger

	mu     sync.Mutex
	active bool
	cursor int
	total  int
}

// NewEngine creates an idle engine.
func NewEngine(player Player, fetcher Fetcher, log zerolog.Logger) *Engine {
	return &Engine{player: player, fetcher: fetcher, log: log}
}

// Position reports the cursor while a sequence is playing: the
// zero-based index of the clip in flight, the sequence length, and
// whether playback is active. Between sequences it reports zeros.
func (e *Engine) Position() (index, total int, active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor, e.total, e.active
}

// Play delivers the sequence in order. An empty sequence is an
// immediate success. On the first clip that fails to load or play, the
// rest of the sequence is abandoned and a playback error identifying
// the position is returned; clips already played are never replayed.
func (e *Engine) Play(ctx context.Context, segments []tutor.AudioSegment) error {
	if len(segments) == 0 {
		return nil
	}

	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return errors.New(errors.ErrPlayback, "playback already in progress")
	}
	e.active = true
	e.cursor = 0
	e.total = len(segments)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active = false
		e.cursor = 0
		e.total = 0
		e.mu.Unlock()
	}()

	for i, seg := range segments {
		e.mu.Lock()
		e.cursor = i
		e.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return e.abort(i, len(segments), "playback interrupted", err)
		}

		data, err := e.fetcher.Fetch(ctx, seg.AudioURL)
		if err != nil {
			return e.abort(i, len(segments), "failed to load clip", err)
		}

		clip := Clip{Lang: seg.Lang, URL: seg.AudioURL, Data: data}
		if err := e.player.Play(ctx, clip); err != nil {
			return e.abort(i, len(segments), "clip playback failed", err)
		}
		e.log.Debug().Int("position", i+1).Int("total", len(segments)).
			Str("lang", string(seg.Lang)).Msg("clip finished")
	}
	return nil
}

func (e *Engine) abort(index, total int, message string, err error) error {
	e.log.Warn().Err(err).Int("position", index+1).Int("total", total).Msg(message)
	return errors.Playback(message, err).WithDetails(map[string]interface{}{
		"position": index + 1,
		"total":    total,
	})
}
