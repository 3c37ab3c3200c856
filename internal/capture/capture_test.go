package capture

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/nvoisard/bilingo/internal/errors"
	"github.com/nvoisard/bilingo/internal/logger"
)

func TestPressStartsRecording(t *testing.T) {
	dev := &StubDevice{Blob: []byte("audio")}
	c := NewController(dev, logger.NewNop())

	if err := c.Press(context.Background()); err != nil {
		t.Fatalf("press failed: %v", err)
	}
	if got := c.State(); got != StateRecording {
		t.Fatalf("expected state %s, got %s", StateRecording, got)
	}
	if dev.Starts() != 1 {
		t.Fatalf("expected 1 device start, got %d", dev.Starts())
	}
}

func TestRepeatedPressIsNoOp(t *testing.T) {
	dev := &StubDevice{Blob: []byte("audio")}
	c := NewController(dev, logger.NewNop())
	ctx := context.Background()

	// The same physical gesture firing through mouse and touch.
	if err := c.Press(ctx); err != nil {
		t.Fatalf("first press failed: %v", err)
	}
	if err := c.Press(ctx); err != nil {
		t.Fatalf("duplicate press should be silent, got %v", err)
	}
	if dev.Starts() != 1 {
		t.Fatalf("expected a single device start, got %d", dev.Starts())
	}
	if got := c.State(); got != StateRecording {
		t.Fatalf("expected state %s, got %s", StateRecording, got)
	}
}

func TestPressDuringProcessingIsNoOp(t *testing.T) {
	dev := &StubDevice{Blob: []byte("audio")}
	c := NewController(dev, logger.NewNop())
	ctx := context.Background()

	if err := c.Press(ctx); err != nil {
		t.Fatalf("press failed: %v", err)
	}
	if _, ok, err := c.Release(); !ok || err != nil {
		t.Fatalf("release failed: ok=%v err=%v", ok, err)
	}

	// Upload in flight; another press must not disturb it.
	if err := c.Press(ctx); err != nil {
		t.Fatalf("press during processing should be silent, got %v", err)
	}
	if got := c.State(); got != StateProcessing {
		t.Fatalf("expected state %s, got %s", StateProcessing, got)
	}
	if dev.Starts() != 1 {
		t.Fatalf("expected no second device start, got %d", dev.Starts())
	}
}

func TestCapabilityErrorLeavesControllerIdle(t *testing.T) {
	dev := &StubDevice{StartErr: stderrors.New("permission denied")}
	c := NewController(dev, logger.NewNop())
	ctx := context.Background()

	err := c.Press(ctx)
	if err == nil {
		t.Fatal("expected capability error")
	}
	if code := errors.Code(err); code != errors.ErrCapability {
		t.Fatalf("expected %s, got %s", errors.ErrCapability, code)
	}
	if got := c.State(); got != StateIdle {
		t.Fatalf("expected state %s after denial, got %s", StateIdle, got)
	}

	// The controller must accept a fresh attempt once the device works.
	dev.StartErr = nil
	if err := c.Press(ctx); err != nil {
		t.Fatalf("retry after denial failed: %v", err)
	}
	if got := c.State(); got != StateRecording {
		t.Fatalf("expected state %s on retry, got %s", StateRecording, got)
	}
}

func TestReleaseWithoutRecording(t *testing.T) {
	c := NewController(&StubDevice{}, logger.NewNop())

	blob, ok, err := c.Release()
	if blob != nil || ok || err != nil {
		t.Fatalf("expected silent no-op, got blob=%v ok=%v err=%v", blob, ok, err)
	}
	if got := c.State(); got != StateIdle {
		t.Fatalf("expected state %s, got %s", StateIdle, got)
	}
}

func TestReleaseWithZeroDataYieldsEmptyBlob(t *testing.T) {
	dev := &StubDevice{} // nothing buffered
	c := NewController(dev, logger.NewNop())

	if err := c.Press(context.Background()); err != nil {
		t.Fatalf("press failed: %v", err)
	}
	blob, ok, err := c.Release()
	if err != nil || !ok {
		t.Fatalf("release failed: ok=%v err=%v", ok, err)
	}
	if blob == nil {
		t.Fatal("expected non-nil blob for silent recording")
	}
	if len(blob) != 0 {
		t.Fatalf("expected empty blob, got %d bytes", len(blob))
	}
	if got := c.State(); got != StateProcessing {
		t.Fatalf("expected state %s, got %s", StateProcessing, got)
	}
}

func TestStopFailureReturnsToIdle(t *testing.T) {
	dev := &StubDevice{StopErr: stderrors.New("device wedged")}
	c := NewController(dev, logger.NewNop())

	if err := c.Press(context.Background()); err != nil {
		t.Fatalf("press failed: %v", err)
	}
	_, ok, err := c.Release()
	if ok || err == nil {
		t.Fatalf("expected stop failure, got ok=%v err=%v", ok, err)
	}
	if got := c.State(); got != StateIdle {
		t.Fatalf("expected state %s after stop failure, got %s", StateIdle, got)
	}
}

func TestSettleReArmsAfterProcessing(t *testing.T) {
	dev := &StubDevice{Blob: []byte("audio")}
	c := NewController(dev, logger.NewNop())
	ctx := context.Background()

	if err := c.Press(ctx); err != nil {
		t.Fatalf("press failed: %v", err)
	}
	if _, ok, err := c.Release(); !ok || err != nil {
		t.Fatalf("release failed: ok=%v err=%v", ok, err)
	}
	c.Settle()
	if got := c.State(); got != StateIdle {
		t.Fatalf("expected state %s after settle, got %s", StateIdle, got)
	}

	// Full second cycle must work.
	if err := c.Press(ctx); err != nil {
		t.Fatalf("second press failed: %v", err)
	}
	if dev.Starts() != 2 {
		t.Fatalf("expected 2 device starts, got %d", dev.Starts())
	}
}

func TestSettleDuringRecordingIsIgnored(t *testing.T) {
	dev := &StubDevice{Blob: []byte("audio")}
	c := NewController(dev, logger.NewNop())

	if err := c.Press(context.Background()); err != nil {
		t.Fatalf("press failed: %v", err)
	}
	c.Settle()
	if got := c.State(); got != StateRecording {
		t.Fatalf("expected live recording to survive stray settle, got %s", got)
	}
}
