package playback

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StubPlayer records playback events for tests. Clips are numbered in
// call order starting at 1; FailAt makes that clip report an error
// after it started.
type StubPlayer struct {
	FailAt int
	Delay  time.Duration

	mu        sync.Mutex
	calls     int
	active    int
	maxActive int
	events    []string
}

func (p *StubPlayer) Play(ctx context.Context, clip Clip) error {
	p.mu.Lock()
	p.calls++
	n := p.calls
	p.active++
	if p.active > p.maxActive {
		p.maxActive = p.active
	}
	p.events = append(p.events, fmt.Sprintf("started %d", n))
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}()

	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailAt != 0 && n == p.FailAt {
		p.events = append(p.events, fmt.Sprintf("failed %d", n))
		return fmt.Errorf("clip %d refused to play", n)
	}
	p.events = append(p.events, fmt.Sprintf("ended %d", n))
	return nil
}

// Events returns the start/end log in the order it happened.
func (p *StubPlayer) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	copy(out, p.events)
	return out
}

// MaxConcurrent returns the highest number of clips that were ever in
// flight at once.
func (p *StubPlayer) MaxConcurrent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxActive
}

// StubFetcher serves clip bytes from a map. A nil map serves a
// placeholder for any URL; a populated map treats unknown URLs as
// missing clips.
type StubFetcher struct {
	Clips map[string][]byte
	Err   error

	mu      sync.Mutex
	fetched []string
}

func (f *StubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if f.Clips == nil {
		return []byte("clip"), nil
	}
	data, ok := f.Clips[url]
	if !ok {
		return nil, fmt.Errorf("clip %s not found", url)
	}
	return data, nil
}

// Fetched returns the URLs requested so far, in order.
func (f *StubFetcher) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.fetched))
	copy(out, f.fetched)
	return out
}
