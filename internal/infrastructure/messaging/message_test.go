package messaging

import "testing"

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage("msg-1", "plan.generated", "client-1", map[string]string{"generation_id": "gen-1"})
	if err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	if msg.ID != "msg-1" || msg.Type != "plan.generated" || msg.ClientID != "client-1" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	var payload map[string]string
	if err := msg.UnmarshalPayload(&payload); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if payload["generation_id"] != "gen-1" {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestMessageMetadata(t *testing.T) {
	msg := &Message{}
	msg.SetMetadata("provider", "gemini")
	if got := msg.GetMetadata("provider"); got != "gemini" {
		t.Errorf("unexpected metadata: %s", got)
	}
	if got := msg.GetMetadata("missing"); got != "" {
		t.Errorf("expected empty value for missing key, got %s", got)
	}
}

func TestStreamDLQ(t *testing.T) {
	if got := StreamPlanEvents.DLQStream(); got != "dlq:stream:plan:events" {
		t.Errorf("unexpected dlq stream: %s", got)
	}
	if got := StreamAuditLog.DLQStream(); got != "dlq:stream:audit:log" {
		t.Errorf("unexpected dlq stream: %s", got)
	}
}

func TestNewAuditMessage(t *testing.T) {
	msg, err := newAuditMessage(&AuditMessage{
		Action:   "last_plan.deleted",
		ClientID: "client-1",
	})
	if err != nil {
		t.Fatalf("failed to build audit message: %v", err)
	}
	if msg.Type != "audit.last_plan.deleted" {
		t.Errorf("unexpected type: %s", msg.Type)
	}
	if msg.ClientID != "client-1" {
		t.Errorf("unexpected client id: %s", msg.ClientID)
	}
	if msg.ID == "" {
		t.Error("expected generated message id")
	}

	var entry AuditMessage
	if err := msg.UnmarshalPayload(&entry); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if entry.Action != "last_plan.deleted" || entry.OccurredAt.IsZero() {
		t.Errorf("unexpected audit entry: %+v", entry)
	}
}
