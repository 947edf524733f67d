package firewall

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/ryotarai/fwctl/pkg/runner"
	"strings"
)

const DefaultNetshCommand = "netsh"

// Netsh drives the Windows firewall through "netsh advfirewall".
type Netsh struct {
	logger  zerolog.Logger
	runner  runner.Runner
	command string
}

func NewNetsh(logger zerolog.Logger, r runner.Runner, command string) *Netsh {
	if command == "" {
		command = DefaultNetshCommand
	}
	return &Netsh{
		logger:  logger.With().Str("component", "netsh").Logger(),
		runner:  r,
		command: command,
	}
}

func (n *Netsh) Status(ctx context.Context) Status {
	res := n.netsh(ctx, "advfirewall", "show", "allprofiles")
	if !res.Success {
		return Status{Success: false, Error: res.Error}
	}

	return Status{
		Success: true,
		Status:  ParseStatus(res.Output),
		Profile: AllProfiles,
	}
}

func (n *Netsh) SetState(ctx context.Context, state string) runner.Result {
	return n.netsh(ctx, "advfirewall", "set", "allprofiles", "state", NormalizeState(state))
}

func (n *Netsh) AddRule(ctx context.Context, rule NewRule) runner.Result {
	// exec quotes the name argument itself when it contains spaces
	return n.netsh(ctx, "advfirewall", "firewall", "add", "rule",
		fmt.Sprintf("name=%s", rule.Name),
		"dir=in",
		fmt.Sprintf("action=%s", strings.ToLower(rule.Action)),
		fmt.Sprintf("protocol=%s", strings.ToLower(rule.Protocol)),
		fmt.Sprintf("localport=%s", rule.Port),
	)
}

func (n *Netsh) Rules(ctx context.Context) RuleList {
	res := n.netsh(ctx, "advfirewall", "firewall", "show", "rule", "name=all")
	if !res.Success {
		n.logger.Debug().Str("error", res.Error).Msg("Failed to list rules")
		return RuleList{Success: false, Rules: []Rule{}}
	}

	rules := ParseRules(res.Output)
	listed := SelectRules(rules)
	n.logger.Debug().Int("parsed", len(rules)).Int("listed", len(listed)).Msg("Listed rules")

	return RuleList{Success: true, Rules: listed}
}

// NormalizeState maps anything but "on", in any case, to "off".
func NormalizeState(state string) string {
	if strings.EqualFold(state, StateOn) {
		return StateOn
	}
	return StateOff
}

func (n *Netsh) netsh(ctx context.Context, args ...string) runner.Result {
	n.logger.Debug().Strs("args", args).Msg("Running netsh")
	return n.runner.Run(ctx, n.command, args...)
}
