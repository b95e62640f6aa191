package entity

import (
	"encoding/json"
	"testing"
)

func TestNewPlanGeneration(t *testing.T) {
	params := json.RawMessage(`{"business_name": "Chai Point"}`)
	gen := NewPlanGeneration("client-1", params)

	if gen.ID == "" {
		t.Error("expected generated id")
	}
	if gen.ClientID != "client-1" {
		t.Errorf("unexpected client id: %s", gen.ClientID)
	}
	if gen.Status != GenerationStatusRunning {
		t.Errorf("expected running status, got %s", gen.Status)
	}
	if gen.StartedAt == nil {
		t.Error("expected started_at to be set")
	}
	if gen.CompletedAt != nil {
		t.Error("completed_at must be empty for a new record")
	}
}

func TestPlanGenerationComplete(t *testing.T) {
	gen := NewPlanGeneration("client-1", nil)
	plan := json.RawMessage(`{"kpis": {}}`)

	gen.Complete(plan, "raw output", 1200)

	if gen.Status != GenerationStatusCompleted {
		t.Errorf("expected completed status, got %s", gen.Status)
	}
	if string(gen.Plan) != string(plan) {
		t.Error("plan payload not recorded")
	}
	if gen.RawOutput != "raw output" || gen.DurationMs != 1200 {
		t.Errorf("unexpected record: raw=%q duration=%d", gen.RawOutput, gen.DurationMs)
	}
	if gen.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

func TestPlanGenerationFail(t *testing.T) {
	gen := NewPlanGeneration("client-1", nil)

	gen.Fail("model timed out", 60000)

	if gen.Status != GenerationStatusFailed {
		t.Errorf("expected failed status, got %s", gen.Status)
	}
	if gen.ErrorMessage != "model timed out" {
		t.Errorf("unexpected error message: %s", gen.ErrorMessage)
	}
	if gen.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}
