package notification

import (
	"errors"
	"testing"
)

type stubChannel struct {
	name  string
	err   error
	panic bool
	sent  int
}

func (c *stubChannel) Name() string { return c.name }

func (c *stubChannel) Send(n Notice) error {
	if c.panic {
		panic("boom")
	}
	c.sent++
	return c.err
}

func TestDispatchRecordsPerChannelOutcome(t *testing.T) {
	ok := &stubChannel{name: "log"}
	bad := &stubChannel{name: "email", err: errors.New("smtp down")}
	repo := NewInMemoryRepository()
	d := NewDispatcher(repo, nil, ok, bad)

	d.Dispatch(Notice{Trigger: TriggerOrderPlaced, OrderID: 7})
	d.Wait()

	entries, err := repo.ListByOrderID(7)
	if err != nil {
		t.Fatalf("ListByOrderID: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}

	byChannel := map[string]Entry{}
	for _, e := range entries {
		byChannel[e.Channel] = e
	}
	if byChannel["log"].Status != StatusSent {
		t.Errorf("log channel status = %q, want %q", byChannel["log"].Status, StatusSent)
	}
	if byChannel["email"].Status != StatusFailed {
		t.Errorf("email channel status = %q, want %q", byChannel["email"].Status, StatusFailed)
	}
	if byChannel["email"].Error != "smtp down" {
		t.Errorf("email entry error = %q", byChannel["email"].Error)
	}
}

func TestDispatchOneChannelFailureDoesNotBlockOthers(t *testing.T) {
	bad := &stubChannel{name: "email", err: errors.New("smtp down")}
	ok := &stubChannel{name: "whatsapp"}
	d := NewDispatcher(NewInMemoryRepository(), nil, bad, ok)

	d.Dispatch(Notice{Trigger: TriggerStatusChanged, OrderID: 1})
	d.Wait()

	if ok.sent != 1 {
		t.Errorf("second channel attempted %d times, want 1", ok.sent)
	}
}

func TestDispatchSurvivesPanickingChannel(t *testing.T) {
	angry := &stubChannel{name: "email", panic: true}
	repo := NewInMemoryRepository()
	d := NewDispatcher(repo, nil, angry)

	d.Dispatch(Notice{Trigger: TriggerOrderPlaced, OrderID: 3})
	d.Wait()

	entries, _ := repo.ListByOrderID(3)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Status != StatusFailed {
		t.Errorf("status = %q, want %q", entries[0].Status, StatusFailed)
	}
	if entries[0].Error == "" {
		t.Error("expected the panic to be captured in the entry error")
	}
}
