package playback

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// ExecPlayer plays a clip by writing it to a temporary file and running
// an external player command (ffplay, mpv, aplay) until it exits.
type ExecPlayer struct {
	command []string
}

// NewExecPlayer creates a player around the given argv, e.g.
// ["ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"]. The clip
// path is appended as the final argument.
func NewExecPlayer(command []string) *ExecPlayer {
	return &ExecPlayer{command: command}
}

func (p *ExecPlayer) Play(ctx context.Context, clip Clip) error {
	if len(p.command) == 0 {
		return fmt.Errorf("no player command configured")
	}

	f, err := os.CreateTemp("", "bilingo-clip-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp clip: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(clip.Data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write temp clip: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp clip: %w", err)
	}

	args := append(append([]string{}, p.command[1:]...), path)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("player exited with error: %w", err)
	}
	return nil
}
