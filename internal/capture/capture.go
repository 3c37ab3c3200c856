// Package capture drives the push-to-talk microphone flow as a small
// state machine: Idle, Recording while the button is held, Processing
// while the clip is being uploaded, then Idle again.
package capture

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nvoisard/bilingo/internal/errors"
)

// State is the controller's position in the press/release cycle.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
)

// Device is the platform recorder the controller drives. Start begins
// buffering audio. Stop ends buffering and returns everything captured
// since Start; when nothing was picked up it returns an empty, non-nil
// slice.
type Device interface {
	Start(ctx context.Context) error
	Stop() ([]byte, error)
}

// Controller serializes press and release gestures into at most one
// recording at a time. The same physical press can fire through several
// input modalities (mouse, touch, key handler); the state guard absorbs
// the duplicates.
type Controller struct {
	device Device
	log    zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates a controller in the Idle state.
func NewController(device Device, log zerolog.Logger) *Controller {
	return &Controller{device: device, log: log, state: StateIdle}
}

// State reports the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Press starts a recording. While a recording or an upload is already
// in flight the press is ignored. When the device cannot be opened the
// controller stays Idle and reports a capability error once; there is
// no retry loop.
func (c *Controller) Press(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		c.log.Debug().Str("state", string(c.state)).Msg("press ignored")
		return nil
	}

	if err := c.device.Start(ctx); err != nil {
		c.log.Warn().Err(err).Msg("microphone unavailable")
		return errors.Wrap(errors.ErrCapability, "microphone unavailable", err)
	}

	c.state = StateRecording
	c.log.Debug().Msg("recording started")
	return nil
}

// Release stops the recording and hands back the captured audio. The
// boolean reports whether a recording was actually in progress; stray
// releases return false with no error and change nothing. A release
// with zero buffered data still yields a non-nil blob: the backend, not
// the client, decides what silence means.
func (c *Controller) Release() ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecording {
		return nil, false, nil
	}

	blob, err := c.device.Stop()
	if err != nil {
		c.state = StateIdle
		c.log.Warn().Err(err).Msg("failed to stop recording")
		return nil, false, errors.Wrap(errors.ErrCapability, "failed to stop recording", err)
	}

	if blob == nil {
		blob = []byte{}
	}
	c.state = StateProcessing
	c.log.Debug().Int("bytes", len(blob)).Msg("recording stopped")
	return blob, true, nil
}

// Settle re-arms the controller once the turn's upload has finished,
// successfully or not. It only applies from Processing; a stray call
// during a live recording changes nothing.
func (c *Controller) Settle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateProcessing {
		c.state = StateIdle
	}
}
