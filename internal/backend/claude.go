package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ClaudeAdapter runs prompts through the Claude Code CLI in print mode.
// Each Send is a fresh subprocess; there is no conversation state.
type ClaudeAdapter struct {
	command      string
	workDir      string
	model        string
	systemPrompt string
	procMgr      *ProcessManager
}

// claudeResponse is the JSON document printed by `claude -p --output-format json`.
type claudeResponse struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// NewClaudeAdapter creates a Claude CLI backend adapter.
// The ProcessManager is optional; if nil, subprocesses aren't tracked.
func NewClaudeAdapter(cfg Config, procMgr *ProcessManager) (*ClaudeAdapter, error) {
	command := cfg.Command
	if command == "" {
		command = "claude"
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	return &ClaudeAdapter{
		command:      command,
		workDir:      workDir,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		procMgr:      procMgr,
	}, nil
}

// Send runs the CLI once with msg on stdin and returns its result text.
func (a *ClaudeAdapter) Send(ctx context.Context, msg Message) (Response, error) {
	out, err := run(ctx, invocation{
		name:  a.command,
		args:  a.buildArgs(),
		dir:   a.workDir,
		stdin: strings.NewReader(msg.Content),
	}, a.procMgr)
	if err != nil {
		return Response{}, fmt.Errorf("claude command failed: %w", err)
	}

	resp, err := parseClaudeResponse(out.stdout)
	if err != nil {
		return Response{}, fmt.Errorf("failed to parse claude response: %w (stderr: %s)", err, tail(out.stderr, stderrLimit))
	}
	resp.Model = a.model
	return resp, nil
}

// Name returns "claude" or "claude:<model>".
func (a *ClaudeAdapter) Name() string {
	if a.model == "" {
		return "claude"
	}
	return "claude:" + a.model
}

// Close is a no-op for the subprocess-per-invocation model.
func (a *ClaudeAdapter) Close() error {
	return nil
}

// buildArgs returns the CLI flags. The prompt itself goes on stdin so long
// goal descriptions are not bound by the argument size limit.
func (a *ClaudeAdapter) buildArgs() []string {
	args := []string{"-p", "--output-format", "json"}
	if a.model != "" {
		args = append(args, "--model", a.model)
	}
	if a.systemPrompt != "" {
		args = append(args, "--system-prompt", a.systemPrompt)
	}
	return args
}

func parseClaudeResponse(data []byte) (Response, error) {
	var cr claudeResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return Response{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if cr.IsError {
		return Response{}, fmt.Errorf("claude reported an error: %s", cr.Result)
	}
	return Response{Content: cr.Result}, nil
}
