package session

import (
	"context"
	"sync"

	"github.com/nvoisard/bilingo/internal/lang"
	"github.com/nvoisard/bilingo/internal/tutor"
)

// StubAPI is an in-memory API for tests. Entered and Release, when set,
// let a test observe a submit in flight and decide when it finishes.
type StubAPI struct {
	StartID   string
	StartTurn tutor.Turn
	StartErr  error
	ChatTurn  tutor.Turn
	ChatErr   error

	Entered chan struct{}
	Release chan struct{}

	mu          sync.Mutex
	startCalls  int
	chatCalls   int
	lastSession tutor.Session
	lastAudio   []byte
}

func (a *StubAPI) StartSession(ctx context.Context, native, target lang.Code, level string) (string, tutor.Turn, error) {
	a.mu.Lock()
	a.startCalls++
	a.mu.Unlock()

	if a.StartErr != nil {
		return "", tutor.Turn{}, a.StartErr
	}
	return a.StartID, a.StartTurn, nil
}

func (a *StubAPI) SubmitTurn(ctx context.Context, session tutor.Session, audio []byte) (tutor.Turn, error) {
	a.mu.Lock()
	a.chatCalls++
	a.lastSession = session
	a.lastAudio = append([]byte(nil), audio...)
	a.mu.Unlock()

	if a.Entered != nil {
		a.Entered <- struct{}{}
	}
	if a.Release != nil {
		<-a.Release
	}

	if a.ChatErr != nil {
		return tutor.Turn{}, a.ChatErr
	}
	return a.ChatTurn, nil
}

// StartCalls returns how many times StartSession ran.
func (a *StubAPI) StartCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startCalls
}

// ChatCalls returns how many times SubmitTurn ran.
func (a *StubAPI) ChatCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chatCalls
}

// LastSession returns the session forwarded with the latest submit.
func (a *StubAPI) LastSession() tutor.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSession
}

// LastAudio returns the audio forwarded with the latest submit.
func (a *StubAPI) LastAudio() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastAudio
}
