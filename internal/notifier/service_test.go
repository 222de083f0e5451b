package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kit "dietbot/internal/transport"
	logx "dietbot/pkg/logx"
)

type recordingAdapter struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	sendC chan struct{}
}

func (a *recordingAdapter) Start(context.Context, chan<- kit.Update) error { return nil }
func (a *recordingAdapter) Stop(context.Context) error                    { return nil }
func (a *recordingAdapter) EditText(context.Context, kit.MessageRef, string, *kit.SendOptions) error {
	return nil
}
func (a *recordingAdapter) AnswerCallback(context.Context, string, string) error { return nil }

func (a *recordingAdapter) SendText(_ context.Context, to kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sendC != nil {
		defer func() { a.sendC <- struct{}{} }()
	}
	if a.fail {
		return kit.MessageRef{}, errors.New("telegram says no")
	}
	a.sent = append(a.sent, text)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(a.sent)}, nil
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	s := New(Config{}, &recordingAdapter{}, logx.Nop())
	if err := s.Enqueue(kit.Notification{Text: "hi"}); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
}

func TestQueueFull(t *testing.T) {
	s := New(Config{QueueSize: 1, Workers: 1, RatePerSec: 1}, &recordingAdapter{}, logx.Nop())
	// Fill the queue without starting workers.
	s.mu.Lock()
	s.queue = make(chan kit.Notification, 1)
	s.accepting = true
	s.mu.Unlock()

	if err := s.Enqueue(kit.Notification{Text: "a"}); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := s.Enqueue(kit.Notification{Text: "b"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
}

func TestDeliveryAndStop(t *testing.T) {
	ad := &recordingAdapter{sendC: make(chan struct{}, 4)}
	s := New(Config{Workers: 1, QueueSize: 8, RatePerSec: 100}, ad, logx.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	for i := 0; i < 3; i++ {
		if err := s.Enqueue(kit.Notification{Target: kit.ChatTarget{ChatID: 1}, Text: "msg"}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		select {
		case <-ad.sendC:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for send %d", i)
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	s.Stop(stopCtx)

	if err := s.Enqueue(kit.Notification{Text: "late"}); !errors.Is(err, ErrStopped) {
		t.Fatalf("enqueue after stop err = %v, want ErrStopped", err)
	}
	ad.mu.Lock()
	n := len(ad.sent)
	ad.mu.Unlock()
	if n != 3 {
		t.Fatalf("sent = %d, want 3", n)
	}
}

func TestSendFailureIsSwallowed(t *testing.T) {
	ad := &recordingAdapter{fail: true, sendC: make(chan struct{}, 1)}
	s := New(Config{Workers: 1, QueueSize: 2, RatePerSec: 100}, ad, logx.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	if err := s.Enqueue(kit.Notification{Target: kit.ChatTarget{ChatID: 7}, Text: "x"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	select {
	case <-ad.sendC:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for failing send")
	}
}
