package campaign

import (
	"testing"

	"github.com/beaconcdp/beacon/internal/core/contact"
	"github.com/beaconcdp/beacon/internal/core/filter"
)

func TestRenderBody(t *testing.T) {
	c := &contact.Contact{
		FirstName: "Alice",
		LastName:  "Smith",
		Phone:     "+15550000001",
		Email:     "alice@example.com",
		Attributes: map[string]any{
			"plan":   "pro",
			"points": 42,
		},
	}

	tests := []struct {
		body string
		want string
	}{
		{"Hi {{first_name}}!", "Hi Alice!"},
		{"{{first_name}} {{last_name}}", "Alice Smith"},
		{"Your plan: {{plan}}", "Your plan: pro"},
		{"You have {{points}} points", "You have 42 points"},
		{"No tokens here", "No tokens here"},
		{"Unknown {{token}} stays", "Unknown {{token}} stays"},
	}

	for _, tt := range tests {
		if got := renderBody(tt.body, c); got != tt.want {
			t.Errorf("renderBody(%q) = %q, expected %q", tt.body, got, tt.want)
		}
	}
}

func TestMessageRecordFiltering(t *testing.T) {
	messages := []*Message{
		{To: "+15550000001", Status: "delivered"},
		{To: "+15550000002", Status: "failed", Error: "unreachable"},
		{To: "+15550000003", Status: "failed", Error: "blocked"},
	}

	failedOnly := []filter.Group{{
		Conditions: []filter.Condition{{
			Field:    "status",
			Operator: filter.OpEquals,
			Value:    "failed",
		}},
	}}

	var matched []*Message
	for _, m := range messages {
		if filter.Evaluate(failedOnly, m.Record(), MessageLogFields) {
			matched = append(matched, m)
		}
	}

	if len(matched) != 2 {
		t.Fatalf("expected 2 failed messages, got %d", len(matched))
	}
	for _, m := range matched {
		if m.Status != "failed" {
			t.Errorf("non-failed message %s matched", m.To)
		}
	}
}

func TestMessageLogFieldsCoverRecord(t *testing.T) {
	m := &Message{To: "+15550000001", Body: "hi", Status: "queued"}
	record := m.Record()

	for _, def := range MessageLogFields {
		if _, ok := record[def.Key]; !ok {
			t.Errorf("registry field %q missing from message record", def.Key)
		}
	}
}
