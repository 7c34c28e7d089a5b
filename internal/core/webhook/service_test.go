package webhook

import (
	"strings"
	"testing"

	"github.com/beaconcdp/beacon/internal/core/filter"
)

func TestSignAndVerify(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"type":"campaign.sent"}`)

	sig := Sign(secret, body)
	if sig == "" {
		t.Fatal("signature is empty")
	}

	if !VerifySignature(secret, body, sig) {
		t.Error("signature should verify with the right secret")
	}
	if VerifySignature("whsec_other", body, sig) {
		t.Error("signature should not verify with a different secret")
	}
	if VerifySignature(secret, []byte(`{"type":"tampered"}`), sig) {
		t.Error("signature should not verify for a different body")
	}
}

func TestGenerateSecret(t *testing.T) {
	s1, err := generateSecret()
	if err != nil {
		t.Fatalf("generateSecret: %v", err)
	}
	s2, _ := generateSecret()

	if !strings.HasPrefix(s1, "whsec_") {
		t.Errorf("secret %q missing whsec_ prefix", s1)
	}
	if s1 == s2 {
		t.Error("secrets should be unique")
	}
}

func TestValidateURL(t *testing.T) {
	valid := []string{"https://example.com/hook", "http://localhost:8080/x"}
	for _, u := range valid {
		if err := validateURL(u); err != nil {
			t.Errorf("validateURL(%q) = %v, expected nil", u, err)
		}
	}

	invalid := []string{"", "not-a-url", "ftp://example.com", "/relative/path"}
	for _, u := range invalid {
		if err := validateURL(u); err == nil {
			t.Errorf("validateURL(%q) should fail", u)
		}
	}
}

func TestValidateEventTypes(t *testing.T) {
	if err := validateEventTypes([]string{EventCampaignSent, EventMessageFailed}); err != nil {
		t.Errorf("known event types rejected: %v", err)
	}
	if err := validateEventTypes([]string{"contact.teleported"}); err == nil {
		t.Error("unknown event type should be rejected")
	}
}

// Subscriptions with conditions only fire when the event payload matches.
func TestConditionsGateDelivery(t *testing.T) {
	conditions := []filter.Group{{
		Conditions: []filter.Condition{{
			Field:     "status",
			Operator:  filter.OpEquals,
			Value:     "failed",
			ValueType: filter.FieldTypeString,
		}},
	}}

	failed := filter.Record{"status": "failed", "to": "+15550000001"}
	delivered := filter.Record{"status": "delivered", "to": "+15550000002"}

	if !filter.Evaluate(conditions, failed, nil) {
		t.Error("failed-status payload should match")
	}
	if filter.Evaluate(conditions, delivered, nil) {
		t.Error("delivered-status payload should not match")
	}

	// No conditions means every event fires.
	if !filter.Evaluate(nil, delivered, nil) {
		t.Error("empty conditions should match everything")
	}
}
