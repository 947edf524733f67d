package firewall

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/ryotarai/fwctl/pkg/runner"
)

// Firewall is implemented by every backend. Results never carry a Go
// error: execution problems are reported through their Success fields.
type Firewall interface {
	Status(ctx context.Context) Status
	SetState(ctx context.Context, state string) runner.Result
	AddRule(ctx context.Context, rule NewRule) runner.Result
	Rules(ctx context.Context) RuleList
}

// Status is the aggregate firewall state.
type Status struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Profile string `json:"profile,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Rule is one parsed firewall rule.
type Rule struct {
	Name     string `json:"name"`
	Port     string `json:"port"`
	Protocol string `json:"protocol"`
	Action   string `json:"action"`
}

// RuleList is the filtered, truncated rule listing.
type RuleList struct {
	Success bool   `json:"success"`
	Rules   []Rule `json:"rules"`
}

// NewRule describes an inbound rule to create.
type NewRule struct {
	Name     string
	Port     string
	Protocol string
	Action   string
}

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	AllProfiles    = "All Profiles"

	StateOn  = "on"
	StateOff = "off"
)

var ErrUnsupportedBackend = fmt.Errorf("firewall backend is not supported")

// New returns the backend registered under name. command is the path of
// the management utility the backend drives.
func New(logger zerolog.Logger, r runner.Runner, name, command string) (Firewall, error) {
	switch name {
	case "", "netsh":
		return NewNetsh(logger, r, command), nil
	}

	return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedBackend)
}
