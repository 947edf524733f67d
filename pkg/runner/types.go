package runner

import (
	"context"
	"encoding/json"
)

// Runner executes a single external command and reports its outcome.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// Result is the normalized outcome of one command execution. On success
// only Output is meaningful, on failure only Error.
type Result struct {
	Success bool
	Output  string
	Error   string
}

// Failure returns a failed Result carrying msg.
func Failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Output  string `json:"output"`
		}{true, r.Output})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{false, r.Error})
}
