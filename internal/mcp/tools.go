package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/beaconcdp/beacon/internal/messaging"
)

type toolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func toolDefinitions() []toolDefinition {
	return []toolDefinition{
		{
			Name:        "send_sms",
			Description: "Send an SMS message to a phone number.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"to":   map[string]any{"type": "string", "description": "Recipient phone number in E.164 format"},
					"from": map[string]any{"type": "string", "description": "Sending number; defaults to the configured number"},
					"body": map[string]any{"type": "string", "description": "Message text"},
				},
				"required": []string{"to", "body"},
			},
		},
		{
			Name:        "get_message",
			Description: "Fetch a single message by its SID.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sid": map[string]any{"type": "string", "description": "Vendor message SID"},
				},
				"required": []string{"sid"},
			},
		},
		{
			Name:        "list_messages",
			Description: "List recent messages, optionally filtered by recipient.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"to":    map[string]any{"type": "string", "description": "Only messages sent to this number"},
					"limit": map[string]any{"type": "integer", "description": "Maximum messages to return"},
				},
			},
		},
	}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type sendSMSArgs struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

type getMessageArgs struct {
	SID string `json:"sid"`
}

type listMessagesArgs struct {
	To    string `json:"to"`
	Limit int    `json:"limit"`
}

func (s *Server) handleToolCall(ctx context.Context, req *request) *response {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: codeInvalidParams, Message: "invalid params"}}
	}

	var (
		result any
		err    error
	)
	switch params.Name {
	case "send_sms":
		result, err = s.callSendSMS(ctx, params.Arguments)
	case "get_message":
		result, err = s.callGetMessage(ctx, params.Arguments)
	case "list_messages":
		result, err = s.callListMessages(ctx, params.Arguments)
	default:
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{
			Code:    codeInvalidParams,
			Message: fmt.Sprintf("unknown tool: %s", params.Name),
		}}
	}

	// Tool execution failures are results, not protocol errors.
	if err != nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{
			"content": []map[string]any{{"type": "text", "text": err.Error()}},
			"isError": true,
		}}
	}

	text, merr := json.MarshalIndent(result, "", "  ")
	if merr != nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: merr.Error()}}
	}
	return &response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{
		"content": []map[string]any{{"type": "text", "text": string(text)}},
	}}
}

func (s *Server) callSendSMS(ctx context.Context, raw json.RawMessage) (*messaging.Message, error) {
	var args sendSMSArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.To == "" || args.Body == "" {
		return nil, fmt.Errorf("to and body are required")
	}
	from := args.From
	if from == "" {
		from = s.defaultFrom
	}
	if from == "" {
		return nil, fmt.Errorf("no sending number configured")
	}
	return s.client.SendMessage(ctx, args.To, from, args.Body)
}

func (s *Server) callGetMessage(ctx context.Context, raw json.RawMessage) (*messaging.Message, error) {
	var args getMessageArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.SID == "" {
		return nil, fmt.Errorf("sid is required")
	}
	return s.client.GetMessage(ctx, args.SID)
}

func (s *Server) callListMessages(ctx context.Context, raw json.RawMessage) ([]*messaging.Message, error) {
	var args listMessagesArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return s.client.ListMessages(ctx, messaging.ListOptions{To: args.To, Limit: args.Limit})
}
