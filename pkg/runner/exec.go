package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
	"os/exec"
	"strings"
	"time"
)

const commandFailedMessage = "Command failed."

// waitDelay bounds how long Wait keeps reading output after the child was
// killed, in case a grandchild still holds the pipes open.
const waitDelay = 2 * time.Second

// Exec runs commands as child processes with an argument vector. Nothing
// goes through a shell, so argument values are never interpreted.
type Exec struct {
	logger  zerolog.Logger
	timeout time.Duration
	allowed map[string]struct{}
}

// NewExec returns an Exec that only runs the named commands. A zero
// timeout waits for the child indefinitely.
func NewExec(logger zerolog.Logger, timeout time.Duration, allowed ...string) *Exec {
	m := map[string]struct{}{}
	for _, name := range allowed {
		m[name] = struct{}{}
	}
	return &Exec{
		logger:  logger.With().Str("component", "runner").Logger(),
		timeout: timeout,
		allowed: m,
	}
}

func (e *Exec) Run(ctx context.Context, name string, args ...string) Result {
	if _, ok := e.allowed[name]; !ok {
		e.logger.Warn().Str("command", name).Msg("Refusing to run command")
		return Failure(fmt.Sprintf("%s is not allowed", name))
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	e.logger.Debug().Str("command", name).Strs("args", args).Msg("Running a command")

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		e.logger.Warn().Err(ctxErr).Str("command", name).Dur("elapsed", elapsed).Msg("Command aborted")
		return Failure(fmt.Sprintf("%s: %s", name, ctxErr))
	}

	exitCode := 0
	if err != nil {
		var eerr *exec.ExitError
		if !errors.As(err, &eerr) {
			e.logger.Debug().Err(err).Str("command", name).Msg("Failed to start command")
			return Failure(err.Error())
		}
		exitCode = eerr.ExitCode()
	}

	e.logger.Debug().Str("command", name).Int("exitCode", exitCode).Dur("elapsed", elapsed).Msg("Command finished")

	if exitCode != 0 {
		msg := Decode(stderr.Bytes())
		if msg == "" {
			msg = commandFailedMessage
		}
		return Failure(msg)
	}

	return Result{Success: true, Output: Decode(stdout.Bytes())}
}

// Decode converts console output in code page 437 to a trimmed string
// with "\n" line endings.
func Decode(b []byte) string {
	decoded, err := charmap.CodePage437.NewDecoder().Bytes(b)
	if err != nil {
		decoded = b
	}
	s := strings.ReplaceAll(string(decoded), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
