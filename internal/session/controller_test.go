package session

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/nvoisard/bilingo/internal/errors"
	"github.com/nvoisard/bilingo/internal/lang"
	"github.com/nvoisard/bilingo/internal/logger"
	"github.com/nvoisard/bilingo/internal/tutor"
)

func TestStartLatchesSessionParameters(t *testing.T) {
	api := &StubAPI{
		StartID: "sess-1",
		StartTurn: tutor.Turn{Segments: []tutor.Segment{
			{Lang: lang.Russian, Text: "Здравствуйте"},
		}},
		ChatTurn: tutor.Turn{Segments: []tutor.Segment{
			{Lang: lang.Russian, Text: "Хорошо"},
		}},
	}
	c := NewController(api, logger.NewNop())
	ctx := context.Background()

	if _, err := c.Start(ctx, lang.French, lang.Russian, "A1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Any number of submits must leave the stored parameters untouched.
	for i := 0; i < 3; i++ {
		if _, err := c.Submit(ctx, []byte("utterance")); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}

	s, ok := c.Session()
	if !ok {
		t.Fatal("expected a started session")
	}
	if s.ID != "sess-1" || s.NativeLang != lang.French || s.TargetLang != lang.Russian || s.Level != "A1" {
		t.Fatalf("session parameters mutated: %+v", s)
	}
}

func TestStartRejectsInvalidParameters(t *testing.T) {
	api := &StubAPI{StartID: "sess-1"}
	c := NewController(api, logger.NewNop())
	ctx := context.Background()

	if _, err := c.Start(ctx, lang.French, lang.French, "A1"); err == nil {
		t.Fatal("expected same-language pair to be rejected")
	}
	if _, err := c.Start(ctx, lang.French, "en", "A1"); err == nil {
		t.Fatal("expected unsupported target to be rejected")
	}
	if _, err := c.Start(ctx, lang.French, lang.Russian, "Z9"); err == nil {
		t.Fatal("expected unknown level to be rejected")
	}
	if api.StartCalls() != 0 {
		t.Fatalf("expected no backend calls for invalid parameters, got %d", api.StartCalls())
	}
	if c.Started() {
		t.Fatal("expected controller to remain unstarted")
	}
}

func TestFailedStartLeavesSessionUnstartedAndRetryable(t *testing.T) {
	api := &StubAPI{
		StartID:  "sess-1",
		StartErr: stderrors.New("connection refused"),
		StartTurn: tutor.Turn{Segments: []tutor.Segment{
			{Lang: lang.French, Text: "Bonjour"},
		}},
	}
	c := NewController(api, logger.NewNop())
	ctx := context.Background()

	if _, err := c.Start(ctx, lang.French, lang.Russian, "A1"); err == nil {
		t.Fatal("expected start failure")
	}
	if c.Started() {
		t.Fatal("failed start must leave the session unstarted")
	}
	if _, err := c.Submit(ctx, []byte("x")); err == nil {
		t.Fatal("expected submit before successful start to be refused")
	}

	// Manual retry with the backend healthy again.
	api.StartErr = nil
	if _, err := c.Start(ctx, lang.French, lang.Russian, "A1"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !c.Started() {
		t.Fatal("expected session after retry")
	}
}

func TestSecondStartIsRefused(t *testing.T) {
	api := &StubAPI{StartID: "sess-1"}
	c := NewController(api, logger.NewNop())
	ctx := context.Background()

	if _, err := c.Start(ctx, lang.French, lang.Russian, "A1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, err := c.Start(ctx, lang.Russian, lang.French, "B2")
	if err == nil {
		t.Fatal("expected second start to be refused")
	}
	if code := errors.Code(err); code != errors.ErrValidation {
		t.Fatalf("expected %s, got %s", errors.ErrValidation, code)
	}

	s, _ := c.Session()
	if s.NativeLang != lang.French || s.Level != "A1" {
		t.Fatalf("latched parameters changed: %+v", s)
	}
}

func TestSubmitForwardsSessionAndAudio(t *testing.T) {
	api := &StubAPI{
		StartID: "sess-9",
		ChatTurn: tutor.Turn{
			UserText: "Я зовут Грег",
			Segments: []tutor.Segment{{Lang: lang.Russian, Text: "Меня зовут Грег"}},
		},
	}
	c := NewController(api, logger.NewNop())
	ctx := context.Background()

	if _, err := c.Start(ctx, lang.Russian, lang.French, "B1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	turn, err := c.Submit(ctx, []byte{0x52, 0x49, 0x46, 0x46})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if turn.UserText != "Я зовут Грег" {
		t.Fatalf("unexpected turn: %+v", turn)
	}

	sent := api.LastSession()
	if sent.ID != "sess-9" || sent.NativeLang != lang.Russian || sent.TargetLang != lang.French || sent.Level != "B1" {
		t.Fatalf("wrong session forwarded: %+v", sent)
	}
	if len(api.LastAudio()) != 4 {
		t.Fatalf("wrong audio forwarded: %v", api.LastAudio())
	}
}

func TestSubmitFailureKeepsSessionUsable(t *testing.T) {
	api := &StubAPI{
		StartID:  "sess-1",
		ChatErr:  stderrors.New("503 from gateway"),
		ChatTurn: tutor.Turn{Segments: []tutor.Segment{{Lang: lang.Russian, Text: "Ещё раз"}}},
	}
	c := NewController(api, logger.NewNop())
	ctx := context.Background()

	if _, err := c.Start(ctx, lang.French, lang.Russian, "A2"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := c.Submit(ctx, []byte("x")); err == nil {
		t.Fatal("expected submit failure")
	}

	s, ok := c.Session()
	if !ok || s.Level != "A2" {
		t.Fatalf("session state corrupted by failed submit: %+v", s)
	}

	api.ChatErr = nil
	if _, err := c.Submit(ctx, []byte("x")); err != nil {
		t.Fatalf("retry after failure should work: %v", err)
	}
}

func TestSubmitWhileInFlightIsRefused(t *testing.T) {
	api := &StubAPI{
		StartID:  "sess-1",
		ChatTurn: tutor.Turn{Segments: []tutor.Segment{{Lang: lang.Russian, Text: "Да"}}},
		Entered:  make(chan struct{}),
		Release:  make(chan struct{}),
	}
	c := NewController(api, logger.NewNop())
	ctx := context.Background()

	if _, err := c.Start(ctx, lang.French, lang.Russian, "A1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(ctx, []byte("first"))
		done <- err
	}()

	<-api.Entered
	if _, err := c.Submit(ctx, []byte("second")); err == nil {
		t.Fatal("expected concurrent submit to be refused")
	}
	close(api.Release)

	if err := <-done; err != nil {
		t.Fatalf("first submit should complete cleanly: %v", err)
	}
	if api.ChatCalls() != 1 {
		t.Fatalf("expected exactly one backend call, got %d", api.ChatCalls())
	}
}

func TestEmptyReplyFallsBackToAcknowledgment(t *testing.T) {
	api := &StubAPI{StartID: "sess-1"} // greeting and reply both empty
	c := NewController(api, logger.NewNop())
	ctx := context.Background()

	greeting, err := c.Start(ctx, lang.Russian, lang.French, "A1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(greeting.Segments) != 1 || greeting.Segments[0].Lang != lang.Russian {
		t.Fatalf("expected russian acknowledgment in greeting, got %+v", greeting.Segments)
	}

	turn, err := c.Submit(ctx, []byte("x"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(turn.Segments) != 1 || turn.Segments[0].Text == "" {
		t.Fatalf("expected acknowledgment segment, got %+v", turn.Segments)
	}
}

func TestStartRoundTripRendering(t *testing.T) {
	api := &StubAPI{
		StartID: "sess-42",
		StartTurn: tutor.Turn{
			Segments: []tutor.Segment{
				{Lang: lang.French, Text: "En russe on dit"},
				{Lang: lang.Russian, Text: "Здравствуйте"},
			},
			AudioSegments: []tutor.AudioSegment{
				{Lang: lang.French, AudioURL: "/audio/a.mp3"},
				{Lang: lang.Russian, AudioURL: "/audio/b.mp3"},
			},
		},
	}
	c := NewController(api, logger.NewNop())

	greeting, err := c.Start(context.Background(), lang.French, lang.Russian, "A1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	s, _ := c.Session()

	if len(greeting.Segments) != 2 {
		t.Fatalf("expected 2 segments in received order, got %d", len(greeting.Segments))
	}

	first := tutor.Classify(greeting.Segments[0], s)
	if first.VisibleImmediately || first.Indicator != "FR" {
		t.Fatalf("expected collapsed FR tip, got %+v", first)
	}
	second := tutor.Classify(greeting.Segments[1], s)
	if !second.VisibleImmediately || second.Indicator != "RU" {
		t.Fatalf("expected visible RU text, got %+v", second)
	}
}
