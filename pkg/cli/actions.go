package cli

import (
	"github.com/ryotarai/fwctl/pkg/firewall"
	"github.com/ryotarai/fwctl/pkg/instance"
	"github.com/ryotarai/fwctl/pkg/runner"
	"github.com/spf13/cobra"
)

var otherInstances = instance.OtherInstances

// The operation verbs disable flag parsing: values such as "-Legacy" or
// "-1" are arguments, not flags.
func init() {
	status := &cobra.Command{
		Use:                "status",
		Short:              "Print whether the firewall is active",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: verbatim(func(cmd *cobra.Command, args []string) error {
			return emit(cmd, fw.Status(cmd.Context()))
		}),
	}

	toggle := &cobra.Command{
		Use:                "toggle <on|off>",
		Short:              "Switch all firewall profiles on or off",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: verbatim(func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return emit(cmd, runner.Failure("Missing arguments for toggle"))
			}
			warnOtherInstances()
			return emit(cmd, fw.SetState(cmd.Context(), args[0]))
		}),
	}

	addRule := &cobra.Command{
		Use:                "add_rule <name> <port> <protocol> <action>",
		Short:              "Add an inbound allow or block rule",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: verbatim(func(cmd *cobra.Command, args []string) error {
			if len(args) < 4 {
				return emit(cmd, runner.Failure("Missing arguments for add_rule"))
			}
			warnOtherInstances()
			return emit(cmd, fw.AddRule(cmd.Context(), firewall.NewRule{
				Name:     args[0],
				Port:     args[1],
				Protocol: args[2],
				Action:   args[3],
			}))
		}),
	}

	getRules := &cobra.Command{
		Use:                "get_rules",
		Short:              "List rules bound to a port or named Test/Block",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: verbatim(func(cmd *cobra.Command, args []string) error {
			return emit(cmd, fw.Rules(cmd.Context()))
		}),
	}

	rootCmd.AddCommand(status, toggle, addRule, getRules)
}

// warnOtherInstances logs when another fwctl process might be changing
// the firewall at the same time. Nothing is locked.
func warnOtherInstances() {
	pids, err := otherInstances()
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to list processes")
		return
	}
	if len(pids) > 0 {
		logger.Warn().Ints("pids", pids).Msg("Other fwctl processes are running, firewall changes may race")
	}
}
