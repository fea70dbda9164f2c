package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"dev.helix.quantum/internal/circuit"
	"dev.helix.quantum/internal/models"
)

const (
	// IBMAPIBaseURL is the IBM Quantum runtime API endpoint.
	IBMAPIBaseURL = "https://api.quantum-computing.ibm.com/runtime"

	// DefaultJobTimeout bounds the wait for a hardware job. Queue times on
	// real devices are unbounded, so the dispatcher needs a hard ceiling.
	DefaultJobTimeout = 2 * time.Minute

	// DefaultPollInterval is how often a submitted job is polled.
	DefaultPollInterval = 5 * time.Second
)

// IBMConfig configures the runtime client.
type IBMConfig struct {
	Token        string
	BaseURL      string
	JobTimeout   time.Duration
	PollInterval time.Duration
}

// IBMClient talks to the IBM Quantum runtime REST API.
type IBMClient struct {
	token        string
	baseURL      string
	jobTimeout   time.Duration
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *logrus.Logger
}

// NewIBMClient constructs a runtime client.
func NewIBMClient(cfg IBMConfig, logger *logrus.Logger) (*IBMClient, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("IBM Quantum token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = IBMAPIBaseURL
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &IBMClient{
		token:        cfg.Token,
		baseURL:      cfg.BaseURL,
		jobTimeout:   cfg.JobTimeout,
		pollInterval: cfg.PollInterval,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}, nil
}

// BackendInfo describes one remote backend.
type BackendInfo struct {
	Name        string `json:"backend_name"`
	NumQubits   int    `json:"n_qubits"`
	Operational bool   `json:"operational"`
	Simulator   bool   `json:"simulator"`
	PendingJobs int    `json:"pending_jobs"`
}

type backendsResponse struct {
	Devices []BackendInfo `json:"devices"`
}

// ListBackends returns all backends visible to the account.
func (c *IBMClient) ListBackends(ctx context.Context) ([]BackendInfo, error) {
	body, err := c.get(ctx, "/backends")
	if err != nil {
		return nil, err
	}
	var resp backendsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse backends response: %w", err)
	}
	return resp.Devices, nil
}

// LeastBusyHardware returns the operational non-simulator backend with the
// shortest queue.
func (c *IBMClient) LeastBusyHardware(ctx context.Context) (*BackendInfo, error) {
	all, err := c.ListBackends(ctx)
	if err != nil {
		return nil, err
	}
	hardware := make([]BackendInfo, 0, len(all))
	for _, b := range all {
		if b.Operational && !b.Simulator {
			hardware = append(hardware, b)
		}
	}
	if len(hardware) == 0 {
		return nil, fmt.Errorf("no operational hardware backends available")
	}
	sort.Slice(hardware, func(i, j int) bool {
		return hardware[i].PendingJobs < hardware[j].PendingJobs
	})
	return &hardware[0], nil
}

type jobRequest struct {
	ProgramID string         `json:"program_id"`
	Backend   string         `json:"backend"`
	Params    map[string]any `json:"params"`
}

type jobCreated struct {
	ID string `json:"id"`
}

type jobStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// JobResult is the normalized payload of a completed runtime job.
type JobResult struct {
	Counts map[string]int `json:"counts"`
	Depth  int            `json:"circuit_depth"`
	Width  int            `json:"circuit_width"`
}

// SubmitAndWait submits a sampler job for the circuit on the named backend
// and blocks until the result arrives or the job timeout elapses.
func (c *IBMClient) SubmitAndWait(ctx context.Context, backendName string, circ *circuit.Circuit, shots int) (*JobResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.jobTimeout)
	defer cancel()

	req := jobRequest{
		ProgramID: "sampler",
		Backend:   backendName,
		Params: map[string]any{
			"circuits": []string{circ.QASM()},
			"shots":    shots,
		},
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job request: %w", err)
	}

	body, err := c.post(ctx, "/jobs", payload)
	if err != nil {
		return nil, err
	}
	var created jobCreated
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return nil, fmt.Errorf("failed to parse job submission response")
	}

	c.logger.WithFields(logrus.Fields{
		"job_id":  created.ID,
		"backend": backendName,
	}).Info("Submitted runtime job")

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("job %s timed out: %w", created.ID, ctx.Err())
		case <-ticker.C:
		}

		statusBody, err := c.get(ctx, "/jobs/"+created.ID)
		if err != nil {
			return nil, err
		}
		var status jobStatus
		if err := json.Unmarshal(statusBody, &status); err != nil {
			return nil, fmt.Errorf("failed to parse job status: %w", err)
		}

		switch status.Status {
		case "Completed":
			resultBody, err := c.get(ctx, "/jobs/"+created.ID+"/results")
			if err != nil {
				return nil, err
			}
			var result JobResult
			if err := json.Unmarshal(resultBody, &result); err != nil {
				return nil, fmt.Errorf("failed to parse job result: %w", err)
			}
			return &result, nil
		case "Failed", "Cancelled":
			return nil, fmt.Errorf("job %s ended with status %s: %s", created.ID, status.Status, status.Reason)
		}
	}
}

func (c *IBMClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *IBMClient) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *IBMClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("IBM API error: %d - %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// HardwareBackend runs circuits on the least busy operational IBM device.
type HardwareBackend struct {
	client *IBMClient
}

// NewHardwareBackend wraps a runtime client.
func NewHardwareBackend(client *IBMClient) *HardwareBackend {
	return &HardwareBackend{client: client}
}

// Name identifies the tier; the concrete device is chosen per run.
func (b *HardwareBackend) Name() string { return "ibm_quantum" }

// Kind reports the hardware tier.
func (b *HardwareBackend) Kind() models.BackendKind { return models.BackendHardware }

// Run selects the least busy device, submits the circuit, and normalizes
// the result. Depth and width fall back to the local computation when the
// service omits them.
func (b *HardwareBackend) Run(ctx context.Context, c *circuit.Circuit, shots int) (*models.ExecutionResult, error) {
	device, err := b.client.LeastBusyHardware(ctx)
	if err != nil {
		return nil, err
	}

	result, err := b.client.SubmitAndWait(ctx, device.Name, c, shots)
	if err != nil {
		return nil, err
	}

	depth := result.Depth
	if depth == 0 {
		depth = c.Depth()
	}
	width := result.Width
	if width == 0 {
		width = c.Width()
	}
	return &models.ExecutionResult{
		Backend:      device.Name,
		BackendKind:  models.BackendHardware,
		Shots:        shots,
		Counts:       result.Counts,
		CircuitDepth: depth,
		CircuitWidth: width,
	}, nil
}
