// Package server exposes the computation tools over stdio as a
// line-delimited JSON-RPC 2.0 server. One request per line on stdin, one
// response per line on stdout; diagnostics go to the logger so stdout stays
// a pure protocol stream.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"dev.helix.quantum/internal/service"
)

const (
	serverName    = "quantum-computation"
	serverVersion = "1.0.0"
	protocolVer   = "2024-11-05"
)

// JSON-RPC error codes.
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

// textContent is the single content block every tool returns.
type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type toolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Server reads requests from in and writes responses to out.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger

	in  io.Reader
	out io.Writer
	mu  sync.Mutex
}

// New creates a stdio server over os.Stdin/os.Stdout.
func New(svc *service.Service, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{svc: svc, logger: logger, in: os.Stdin, out: os.Stdout}
}

// NewWithIO creates a server over explicit streams, used in tests.
func NewWithIO(svc *service.Service, logger *logrus.Logger, in io.Reader, out io.Writer) *Server {
	s := New(svc, logger)
	s.in = in
	s.out = out
	return s
}

// Run processes requests until EOF on the input stream or context
// cancellation.
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
			s.logger.WithError(err).Warn("Dropping malformed request line")
			s.write(&response{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "parse error"}})
			continue
		}
		s.dispatch(ctx, &req)
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *request) {
	switch req.Method {
	case "initialize":
		s.reply(req, map[string]any{
			"protocolVersion": protocolVer,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": serverName, "version": serverVersion},
		})
	case "notifications/initialized":
		// Notification, no response.
	case "ping":
		s.reply(req, map[string]any{})
	case "tools/list":
		s.reply(req, map[string]any{"tools": toolSpecs()})
	case "tools/call":
		s.handleToolCall(ctx, req)
	default:
		if req.ID == nil {
			return
		}
		s.replyError(req, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) handleToolCall(ctx context.Context, req *request) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if len(req.Params) == 0 {
		req.Params = json.RawMessage("{}")
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.replyError(req, codeInvalidParams, "invalid tool call params")
		return
	}

	s.logger.WithField("tool", params.Name).Info("Tool call")

	var text string
	switch params.Name {
	case "quantum_compute":
		query, _ := params.Arguments["query"].(string)
		text = s.svc.QuantumCompute(ctx, query, intArg(params.Arguments, "shots", 0))
	case "list_quantum_backends":
		text = s.svc.ListBackends(ctx)
	case "quantum_circuit_info":
		operation, _ := params.Arguments["operation"].(string)
		text = s.svc.CircuitInfo(operation)
	default:
		text = fmt.Sprintf("Error: Unknown tool: %s", params.Name)
	}

	s.reply(req, toolResult{Content: []textContent{{Type: "text", Text: text}}})
}

func (s *Server) reply(req *request, result any) {
	if req.ID == nil {
		return
	}
	s.write(&response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (s *Server) replyError(req *request, code int, msg string) {
	s.write(&response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: code, Message: msg}})
}

func (s *Server) write(resp *response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
		return
	}
	data = append(data, '\n')
	if _, err := s.out.Write(data); err != nil {
		s.logger.WithError(err).Error("Failed to write response")
	}
}

func intArg(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func toolSpecs() []toolSpec {
	return []toolSpec{
		{
			Name:        "quantum_compute",
			Description: "Perform quantum computations using natural language commands",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Natural language description of quantum computation to perform",
					},
					"shots": map[string]any{
						"type":        "integer",
						"description": "Number of shots for quantum execution (default: 1024)",
						"default":     service.DefaultShots,
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "list_quantum_backends",
			Description: "List available IBM Quantum backends",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
		{
			Name:        "quantum_circuit_info",
			Description: "Get information about quantum circuits and operations",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"operation": map[string]any{
						"type":        "string",
						"description": "Type of quantum operation to get info about",
					},
				},
				"required": []string{"operation"},
			},
		},
	}
}
