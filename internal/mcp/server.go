package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/beaconcdp/beacon/internal/messaging"
)

const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Messenger is the messaging surface the server exposes as tools.
type Messenger interface {
	SendMessage(ctx context.Context, to, from, body string) (*messaging.Message, error)
	GetMessage(ctx context.Context, sid string) (*messaging.Message, error)
	ListMessages(ctx context.Context, opts messaging.ListOptions) ([]*messaging.Message, error)
}

// Server speaks MCP over newline-delimited JSON-RPC on a reader/writer
// pair, normally stdin and stdout.
type Server struct {
	client      Messenger
	defaultFrom string
	in          io.Reader
	out         io.Writer
}

func NewServer(client Messenger, defaultFrom string, in io.Reader, out io.Writer) *Server {
	return &Server{client: client, defaultFrom: defaultFrom, in: in, out: out}
}

// Run reads requests until EOF or the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(&response{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "parse error"}})
			continue
		}

		resp := s.handle(ctx, &req)
		if resp != nil {
			s.write(resp)
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, req *request) *response {
	if req.JSONRPC != "2.0" {
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "jsonrpc must be 2.0"}}
	}

	switch req.Method {
	case "initialize":
		return &response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": "beacon-sms", "version": "1.0.0"},
		}}
	case "notifications/initialized":
		// Notification, no reply.
		return nil
	case "tools/list":
		return &response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{"tools": toolDefinitions()}}
	case "tools/call":
		return s.handleToolCall(ctx, req)
	case "ping":
		return &response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{}}
	default:
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{
			Code:    codeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}}
	}
}

func (s *Server) write(resp *response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("mcp: marshaling response: %v", err)
		return
	}
	data = append(data, '\n')
	if _, err := s.out.Write(data); err != nil {
		log.Printf("mcp: writing response: %v", err)
	}
}
