package capture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

// stopGrace is how long the recorder process gets to exit cleanly after
// an interrupt before it is killed.
const stopGrace = 3 * time.Second

// ExecDevice records by running an external capture command (ffmpeg,
// arecord, sox) that streams audio to stdout until interrupted. The
// command's stdout between Start and Stop is the captured blob.
type ExecDevice struct {
	command []string

	mu   sync.Mutex
	cmd  *exec.Cmd
	buf  *bytes.Buffer
	done chan error
}

// NewExecDevice creates a device around the given argv, e.g.
// ["ffmpeg", "-f", "pulse", "-i", "default", "-f", "wav", "-"].
func NewExecDevice(command []string) *ExecDevice {
	return &ExecDevice{command: command}
}

func (d *ExecDevice) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil {
		return fmt.Errorf("recorder already running")
	}
	if len(d.command) == 0 {
		return fmt.Errorf("no recorder command configured")
	}

	cmd := exec.Command(d.command[0], d.command[1:]...)
	buf := &bytes.Buffer{}
	cmd.Stdout = buf
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start recorder: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	d.cmd, d.buf, d.done = cmd, buf, done
	return nil
}

func (d *ExecDevice) Stop() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd == nil {
		return []byte{}, nil
	}

	// An interrupt lets ffmpeg flush its container trailer; only kill
	// when the process refuses to exit.
	_ = d.cmd.Process.Signal(os.Interrupt)
	select {
	case <-d.done:
	case <-time.After(stopGrace):
		_ = d.cmd.Process.Kill()
		<-d.done
	}

	blob := d.buf.Bytes()
	d.cmd, d.buf, d.done = nil, nil, nil
	if blob == nil {
		blob = []byte{}
	}
	return blob, nil
}
