package capture

import (
	"context"
	"sync"
)

// StubDevice is an in-memory Device for tests and dry runs. It hands
// back a configured blob on Stop and can be told to fail either call.
type StubDevice struct {
	Blob     []byte
	StartErr error
	StopErr  error

	mu      sync.Mutex
	started int
	stopped int
}

func (d *StubDevice) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.StartErr != nil {
		return d.StartErr
	}
	d.started++
	return nil
}

func (d *StubDevice) Stop() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.StopErr != nil {
		return nil, d.StopErr
	}
	d.stopped++
	if d.Blob == nil {
		return []byte{}, nil
	}
	return d.Blob, nil
}

// Starts returns how many recordings were successfully started.
func (d *StubDevice) Starts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Stops returns how many recordings were successfully stopped.
func (d *StubDevice) Stops() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}
