package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.quantum/internal/config"
	"dev.helix.quantum/internal/service"
)

func runSession(t *testing.T, requests ...string) []response {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{DefaultShots: 1024}
	cfg.Sim.Seed = 42
	svc := service.New(cfg, logger)

	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	var out bytes.Buffer
	s := NewWithIO(svc, logger, in, &out)
	require.NoError(t, s.Run(context.Background()))

	var responses []response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func resultMap(t *testing.T, resp response) map[string]any {
	t.Helper()
	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func toolText(t *testing.T, resp response) string {
	t.Helper()
	m := resultMap(t, resp)
	content, ok := m["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)
	block := content[0].(map[string]any)
	assert.Equal(t, "text", block["type"])
	return block["text"].(string)
}

func TestInitialize(t *testing.T) {
	responses := runSession(t, `{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": {}}`)
	require.Len(t, responses, 1)

	m := resultMap(t, responses[0])
	info := m["serverInfo"].(map[string]any)
	assert.Equal(t, "quantum-computation", info["name"])
	assert.Equal(t, "1.0.0", info["version"])
	assert.Equal(t, "2024-11-05", m["protocolVersion"])
}

func TestInitializedNotificationHasNoResponse(t *testing.T) {
	responses := runSession(t,
		`{"jsonrpc": "2.0", "method": "notifications/initialized"}`,
		`{"jsonrpc": "2.0", "id": 2, "method": "ping"}`,
	)
	require.Len(t, responses, 1)
	assert.Equal(t, json.RawMessage("2"), responses[0].ID)
}

func TestToolsList(t *testing.T) {
	responses := runSession(t, `{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}`)
	require.Len(t, responses, 1)

	m := resultMap(t, responses[0])
	tools := m["tools"].([]any)
	require.Len(t, tools, 3)

	names := make([]string, 0, 3)
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"quantum_compute", "list_quantum_backends", "quantum_circuit_info"}, names)
}

func TestToolCallQuantumCompute(t *testing.T) {
	responses := runSession(t,
		`{"jsonrpc": "2.0", "id": 5, "method": "tools/call", "params": {"name": "quantum_compute", "arguments": {"query": "create a bell state", "shots": 512}}}`,
	)
	require.Len(t, responses, 1)

	text := toolText(t, responses[0])
	assert.Contains(t, text, "bell_state")
	assert.Contains(t, text, "aer_simulator")
	assert.Contains(t, text, "Shots: 512")
}

func TestToolCallMissingQuery(t *testing.T) {
	responses := runSession(t,
		`{"jsonrpc": "2.0", "id": 6, "method": "tools/call", "params": {"name": "quantum_compute", "arguments": {}}}`,
	)
	require.Len(t, responses, 1)
	assert.Equal(t, "Missing required parameter: query", toolText(t, responses[0]))
}

func TestToolCallListBackends(t *testing.T) {
	responses := runSession(t,
		`{"jsonrpc": "2.0", "id": 7, "method": "tools/call", "params": {"name": "list_quantum_backends", "arguments": {}}}`,
	)
	require.Len(t, responses, 1)
	assert.Contains(t, toolText(t, responses[0]), "IBM Quantum not available")
}

func TestToolCallCircuitInfo(t *testing.T) {
	responses := runSession(t,
		`{"jsonrpc": "2.0", "id": 8, "method": "tools/call", "params": {"name": "quantum_circuit_info", "arguments": {"operation": "vqe"}}}`,
	)
	require.Len(t, responses, 1)
	assert.Contains(t, toolText(t, responses[0]), "ground state energy")
}

func TestToolCallUnknownTool(t *testing.T) {
	responses := runSession(t,
		`{"jsonrpc": "2.0", "id": 9, "method": "tools/call", "params": {"name": "mystery_tool", "arguments": {}}}`,
	)
	require.Len(t, responses, 1)
	assert.Contains(t, toolText(t, responses[0]), "Unknown tool: mystery_tool")
}

func TestUnknownMethod(t *testing.T) {
	responses := runSession(t, `{"jsonrpc": "2.0", "id": 10, "method": "resources/list"}`)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, codeMethodNotFound, responses[0].Error.Code)
}

func TestMalformedLine(t *testing.T) {
	responses := runSession(t,
		`this is not json`,
		`{"jsonrpc": "2.0", "id": 11, "method": "ping"}`,
	)
	require.Len(t, responses, 2)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, codeParseError, responses[0].Error.Code)
	assert.Nil(t, responses[1].Error)
}
