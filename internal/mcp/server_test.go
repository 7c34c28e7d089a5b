package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/beaconcdp/beacon/internal/messaging"
)

type fakeMessenger struct {
	sent      []string
	sendErr   error
	getResult *messaging.Message
}

func (f *fakeMessenger) SendMessage(ctx context.Context, to, from, body string) (*messaging.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, to)
	return &messaging.Message{SID: "SM123", To: to, From: from, Body: body, Status: "queued"}, nil
}

func (f *fakeMessenger) GetMessage(ctx context.Context, sid string) (*messaging.Message, error) {
	if f.getResult == nil {
		return nil, fmt.Errorf("message not found")
	}
	return f.getResult, nil
}

func (f *fakeMessenger) ListMessages(ctx context.Context, opts messaging.ListOptions) ([]*messaging.Message, error) {
	return []*messaging.Message{{SID: "SM1", To: opts.To}}, nil
}

func runRequests(t *testing.T, client Messenger, requests ...string) []response {
	t.Helper()

	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	var out bytes.Buffer

	server := NewServer(client, "+15550001111", in, &out)
	if err := server.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var responses []response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("invalid response line %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestInitialize(t *testing.T) {
	responses := runRequests(t, &fakeMessenger{},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if responses[0].Error != nil {
		t.Fatalf("initialize returned error: %v", responses[0].Error)
	}

	result, ok := responses[0].Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type %T", responses[0].Result)
	}
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion = %v, expected %s", result["protocolVersion"], protocolVersion)
	}
}

func TestInitializedNotificationHasNoReply(t *testing.T) {
	responses := runRequests(t, &fakeMessenger{},
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`)

	if len(responses) != 1 {
		t.Fatalf("expected only the ping reply, got %d responses", len(responses))
	}
}

func TestToolsList(t *testing.T) {
	responses := runRequests(t, &fakeMessenger{},
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	result := responses[0].Result.(map[string]any)
	tools, ok := result["tools"].([]any)
	if !ok {
		t.Fatalf("tools missing from result: %v", result)
	}
	if len(tools) != 3 {
		t.Errorf("expected 3 tools, got %d", len(tools))
	}

	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.(map[string]any)["name"].(string)] = true
	}
	for _, want := range []string{"send_sms", "get_message", "list_messages"} {
		if !names[want] {
			t.Errorf("tool %s not listed", want)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	responses := runRequests(t, &fakeMessenger{},
		`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)

	if responses[0].Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if responses[0].Error.Code != codeMethodNotFound {
		t.Errorf("error code = %d, expected %d", responses[0].Error.Code, codeMethodNotFound)
	}
}

func TestSendSMSTool(t *testing.T) {
	messenger := &fakeMessenger{}
	responses := runRequests(t, messenger,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"send_sms","arguments":{"to":"+15557654321","body":"hi"}}}`)

	if responses[0].Error != nil {
		t.Fatalf("tools/call returned protocol error: %v", responses[0].Error)
	}

	result := responses[0].Result.(map[string]any)
	if result["isError"] == true {
		t.Fatalf("tool reported error: %v", result)
	}
	if len(messenger.sent) != 1 || messenger.sent[0] != "+15557654321" {
		t.Errorf("message not sent to expected recipient: %v", messenger.sent)
	}
}

func TestSendSMSToolUsesDefaultFrom(t *testing.T) {
	messenger := &fakeMessenger{}
	runRequests(t, messenger,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"send_sms","arguments":{"to":"+15557654321","body":"hi"}}}`)

	if len(messenger.sent) != 1 {
		t.Fatal("expected one send")
	}
}

func TestToolFailureIsResultNotProtocolError(t *testing.T) {
	messenger := &fakeMessenger{sendErr: fmt.Errorf("vendor down")}
	responses := runRequests(t, messenger,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"send_sms","arguments":{"to":"+15557654321","body":"hi"}}}`)

	if responses[0].Error != nil {
		t.Fatalf("tool failure should not be a protocol error: %v", responses[0].Error)
	}

	result := responses[0].Result.(map[string]any)
	if result["isError"] != true {
		t.Errorf("expected isError=true, got %v", result)
	}
}

func TestUnknownTool(t *testing.T) {
	responses := runRequests(t, &fakeMessenger{},
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"delete_everything","arguments":{}}}`)

	if responses[0].Error == nil {
		t.Fatal("expected error for unknown tool")
	}
	if responses[0].Error.Code != codeInvalidParams {
		t.Errorf("error code = %d, expected %d", responses[0].Error.Code, codeInvalidParams)
	}
}

func TestSendSMSMissingArguments(t *testing.T) {
	responses := runRequests(t, &fakeMessenger{},
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"send_sms","arguments":{"to":"+15557654321"}}}`)

	result := responses[0].Result.(map[string]any)
	if result["isError"] != true {
		t.Error("missing body should produce a tool error")
	}
}
