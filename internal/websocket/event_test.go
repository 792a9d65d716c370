package websocket

import (
	"encoding/json"
	"testing"
)

func TestNewEvent_CombinedType(t *testing.T) {
	event := NewEvent(EventTypeCreated, EntityTypeClaim, nil)
	if event.Type != "claim.created" {
		t.Errorf("Expected type 'claim.created', got %s", event.Type)
	}
	if event.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}
}

func TestEvent_ToJSON(t *testing.T) {
	event := AllocationToppedUp(map[string]interface{}{"employeeCode": "E100"})

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if decoded["type"] != "allocation.topped_up" {
		t.Errorf("Expected type 'allocation.topped_up', got %v", decoded["type"])
	}
	payload, ok := decoded["payload"].(map[string]interface{})
	if !ok || payload["employeeCode"] != "E100" {
		t.Errorf("Unexpected payload: %v", decoded["payload"])
	}
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{ClaimCreated(nil), "claim.created"},
		{AllocationUpdated(nil), "allocation.updated"},
		{AllocationToppedUp(nil), "allocation.topped_up"},
		{CategoryCreated(nil), "category.created"},
		{CategoryDeleted(nil), "category.deleted"},
		{AssignmentCreated(nil), "assignment.created"},
		{AssignmentDeleted(nil), "assignment.deleted"},
	}
	for _, tt := range tests {
		if tt.event.Type != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, tt.event.Type)
		}
	}
}
