// Package classify turns a free-text query into a ComputationRequest. A
// configured language model does the heavy lifting; a deterministic keyword
// fallback guarantees the classifier never fails.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"dev.helix.quantum/internal/models"
)

// Completer is the language-model capability the classifier consumes.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Classifier maps queries onto operation templates.
type Classifier struct {
	llm    Completer // nil when no language model is configured
	logger *logrus.Logger

	// OnFallback, when set, is invoked each time a classification is
	// served by the deterministic path.
	OnFallback func()
}

// New constructs a classifier. llm may be nil.
func New(llm Completer, logger *logrus.Logger) *Classifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &Classifier{llm: llm, logger: logger}
}

const classifySystemPrompt = `You analyze quantum computation requests and respond with strict JSON only.`

const classifyPromptTemplate = `Analyze this quantum computation request and extract the key information:
Query: %q

Determine:
1. What type of quantum operation is being requested?
2. How many qubits are needed?
3. What parameters are specified?

Available operations:
- bell_state: Create Bell states (entangled pairs)
- qft: Quantum Fourier Transform
- grover: Grover's search algorithm
- teleportation: Quantum teleportation
- vqe: Variational Quantum Eigensolver
- qaoa: Quantum Approximate Optimization Algorithm
- custom: Custom quantum circuit
- random: Quantum random number generation
- deutsch_jozsa: Deutsch-Jozsa algorithm
- bernstein_vazirani: Bernstein-Vazirani algorithm

Respond in JSON format:
{
    "operation_type": "operation_name",
    "num_qubits": number,
    "parameters": {},
    "reasoning": "explanation"
}`

// llmClassification is the JSON shape the language model is asked to return.
type llmClassification struct {
	OperationType string         `json:"operation_type"`
	NumQubits     int            `json:"num_qubits"`
	Parameters    map[string]any `json:"parameters"`
	Reasoning     string         `json:"reasoning"`
}

// Classify returns a valid ComputationRequest for any query. Language-model
// failures are recovered silently via the deterministic fallback.
func (c *Classifier) Classify(ctx context.Context, query string) *models.ComputationRequest {
	if c.llm != nil {
		req, err := c.classifyWithLLM(ctx, query)
		if err == nil {
			return req
		}
		c.logger.WithError(err).Warn("Language model classification failed, using local processing")
	}
	if c.OnFallback != nil {
		c.OnFallback()
	}
	return c.classifyLocally(query)
}

func (c *Classifier) classifyWithLLM(ctx context.Context, query string) (*models.ComputationRequest, error) {
	prompt := fmt.Sprintf(classifyPromptTemplate, query)
	raw, err := c.llm.Complete(ctx, classifySystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var parsed llmClassification
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("invalid classification JSON: %w", err)
	}

	op, ok := models.ParseOperationType(parsed.OperationType)
	if !ok {
		return nil, fmt.Errorf("unknown operation type %q", parsed.OperationType)
	}
	if parsed.NumQubits < 1 {
		parsed.NumQubits = 2
	}
	if parsed.Parameters == nil {
		parsed.Parameters = map[string]any{}
	}

	return &models.ComputationRequest{
		Query:      query,
		Operation:  op,
		Parameters: parsed.Parameters,
		NumQubits:  parsed.NumQubits,
	}, nil
}

var digitsRe = regexp.MustCompile(`\d+`)

// classifyLocally performs keyword matching. The recognized keyword
// families are intentionally narrow; anything unmatched defaults to a Bell
// state.
func (c *Classifier) classifyLocally(query string) *models.ComputationRequest {
	lower := strings.ToLower(query)

	for _, word := range []string{"bell", "entangl", "epr"} {
		if strings.Contains(lower, word) {
			return &models.ComputationRequest{
				Query:      query,
				Operation:  models.OperationBellState,
				Parameters: map[string]any{},
				NumQubits:  2,
			}
		}
	}

	for _, word := range []string{"random", "rng", "number"} {
		if strings.Contains(lower, word) {
			numQubits := 3
			if m := digitsRe.FindString(query); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					numQubits = n
					if numQubits > 5 {
						numQubits = 5
					}
				}
			}
			return &models.ComputationRequest{
				Query:      query,
				Operation:  models.OperationRandom,
				Parameters: map[string]any{},
				NumQubits:  numQubits,
			}
		}
	}

	return &models.ComputationRequest{
		Query:      query,
		Operation:  models.OperationBellState,
		Parameters: map[string]any{},
		NumQubits:  2,
	}
}

// extractJSON strips markdown fences and surrounding prose so that a model
// answering with ```json ...``` still parses.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}
