package appointment

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAppointment_Cancel(t *testing.T) {
	a := &Appointment{Status: StatusBooked}

	if err := a.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusCancelled || a.CancelledAt == nil {
		t.Errorf("expected cancelled status with timestamp, got %s", a.Status)
	}

	if err := a.Cancel(); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestAppointment_CancelCompleted(t *testing.T) {
	a := &Appointment{Status: StatusCompleted}
	if err := a.Cancel(); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}
	if a.Status != StatusCompleted {
		t.Errorf("status must not change on rejected transition, got %s", a.Status)
	}
}

func TestAppointment_Complete(t *testing.T) {
	a := &Appointment{Status: StatusBooked}

	if err := a.Complete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusCompleted || a.CompletedAt == nil {
		t.Errorf("expected completed status with timestamp, got %s", a.Status)
	}

	if err := a.Complete(); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestAppointment_CompleteCancelled(t *testing.T) {
	a := &Appointment{Status: StatusCancelled}
	if err := a.Complete(); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
	if a.Status != StatusCancelled {
		t.Errorf("a cancelled appointment must stay cancelled, got %s", a.Status)
	}
}

func TestAppointment_MarkPaid(t *testing.T) {
	a := &Appointment{Status: StatusBooked}
	if err := a.MarkPaid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Paid {
		t.Error("expected paid flag set")
	}

	c := &Appointment{Status: StatusCancelled}
	if err := c.MarkPaid(); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestAppointment_MarshalJSON_LegacyFlags(t *testing.T) {
	a := Appointment{Status: StatusCancelled, SlotDate: "2025-07-10", SlotTime: "10:00 AM"}

	raw, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out["cancelled"] != true {
		t.Error("expected cancelled=true in wire form")
	}
	if out["isCompleted"] != false {
		t.Error("expected isCompleted=false in wire form")
	}
	if out["payment"] != false {
		t.Error("expected payment=false in wire form")
	}
	if out["slotTime"] != "10:00 AM" {
		t.Errorf("slot time must round-trip exactly, got %v", out["slotTime"])
	}
}
