package service

import (
	"context"
	"sync"

	"github.com/nvoisard/bilingo/internal/client"
	"github.com/nvoisard/bilingo/internal/lang"
	"github.com/nvoisard/bilingo/internal/tutor"
)

// StubTranscriber returns a fixed transcription.
type StubTranscriber struct {
	Text     string
	Language string
	Err      error

	mu    sync.Mutex
	calls int
	audio []byte
}

func (s *StubTranscriber) Transcribe(_ context.Context, audio []byte, language string) (*client.TranscriptionResult, error) {
	s.mu.Lock()
	s.calls++
	s.audio = audio
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	detected := s.Language
	if detected == "" {
		detected = language
	}
	return &client.TranscriptionResult{Text: s.Text, Language: detected}, nil
}

func (s *StubTranscriber) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StubAnalyzer returns a fixed aligned analysis.
type StubAnalyzer struct {
	Result *client.PronunciationResult
	Err    error

	mu        sync.Mutex
	calls     int
	reference string
}

func (s *StubAnalyzer) AnalyzePronunciation(_ context.Context, _ []byte, referenceText, _ string) (*client.PronunciationResult, error) {
	s.mu.Lock()
	s.calls++
	s.reference = referenceText
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Result, nil
}

func (s *StubAnalyzer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StubAnalyzer) LastReference() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reference
}

// StubChatModel returns a fixed completion.
type StubChatModel struct {
	Content string
	Err     error

	mu     sync.Mutex
	system string
	user   string
}

func (s *StubChatModel) ChatWithSystem(_ context.Context, system, user string) (string, error) {
	s.mu.Lock()
	s.system = system
	s.user = user
	s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	return s.Content, nil
}

func (s *StubChatModel) LastSystem() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.system
}

func (s *StubChatModel) LastUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// StubSynthesizer returns the text itself as audio bytes. FailOn marks
// texts whose synthesis should fail.
type StubSynthesizer struct {
	FailOn map[string]bool

	mu    sync.Mutex
	calls int
}

func (s *StubSynthesizer) Synthesize(_ context.Context, text string, _ lang.Code) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.FailOn[text] {
		return nil, context.DeadlineExceeded
	}
	return []byte(text), nil
}

func (s *StubSynthesizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StubClipStore records saved clips and returns predictable URLs.
type StubClipStore struct {
	Err error

	mu    sync.Mutex
	clips map[string][]byte
}

func (s *StubClipStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.mu.Lock()
	if s.clips == nil {
		s.clips = make(map[string][]byte)
	}
	s.clips[name] = data
	s.mu.Unlock()
	return "/audio/" + name, nil
}

func (s *StubClipStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

// StubTurnRecorder records turns in memory.
type StubTurnRecorder struct {
	Err error

	mu    sync.Mutex
	turns []string
}

func (s *StubTurnRecorder) RecordTurn(_ context.Context, sessionID, userText string, _ []tutor.Segment) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	s.turns = append(s.turns, sessionID+": "+userText)
	s.mu.Unlock()
	return nil
}

func (s *StubTurnRecorder) Turns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.turns...)
}
