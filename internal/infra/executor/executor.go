// Package executor provides the command-based action executor used by the
// CLI. The configured program receives {request_id, action_class, payload}
// as JSON on stdin and signals the outcome through its exit code.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/loopgate/loopgate/internal/domain"
)

// exitTransient is the exit code (EX_TEMPFAIL) by which the executor program
// marks a failure as transient and safe to retry for reversible actions.
const exitTransient = 75

// Ensure Command implements domain.ActionExecutor.
var _ domain.ActionExecutor = (*Command)(nil)

// request is the JSON document handed to the executor program.
type request struct {
	RequestID   string          `json:"request_id"`
	ActionClass string          `json:"action_class"`
	Payload     json.RawMessage `json:"payload"`
}

// Command runs a configured program for each approved action.
type Command struct {
	program string
	args    []string
}

// New creates a Command executor from a shell-style command line.
func New(command string) (*Command, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: executor command is empty", domain.ErrValidation)
	}
	return &Command{program: fields[0], args: fields[1:]}, nil
}

// Execute runs the program. Exit code 0 reports success, 75 a transient
// failure, anything else a permanent one.
func (c *Command) Execute(ctx context.Context, req *domain.ApprovalRequest) (domain.ExecutionResult, error) {
	input, err := json.Marshal(request{
		RequestID:   req.ID,
		ActionClass: string(req.Class),
		Payload:     req.Payload,
	})
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("marshal executor input: %w", err)
	}

	// #nosec G204 - the program comes from the operator's own configuration
	cmd := exec.CommandContext(ctx, c.program, c.args...)
	cmd.Stdin = bytes.NewReader(input)
	output, runErr := cmd.CombinedOutput()
	detail := strings.TrimSpace(string(output))

	if runErr == nil {
		return domain.ExecutionResult{Success: true, Detail: detail}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return domain.ExecutionResult{
			Detail:    detail,
			Transient: exitErr.ExitCode() == exitTransient,
		}, nil
	}
	// The program could not be started at all.
	return domain.ExecutionResult{}, fmt.Errorf("run executor: %w", runErr)
}
