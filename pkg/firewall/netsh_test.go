package firewall

import (
	"context"
	"github.com/rs/zerolog"
	"github.com/ryotarai/fwctl/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type fakeRunner struct {
	result runner.Result
	calls  [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) runner.Result {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.result
}

const allProfilesOutput = `
Domain Profile Settings:
----------------------------------------------------------------------
State                                 OFF
Firewall Policy                       BlockInbound,AllowOutbound

Private Profile Settings:
----------------------------------------------------------------------
State                                 ON
Firewall Policy                       BlockInbound,AllowOutbound

Ok.
`

const showRuleOutput = `
Rule Name:                            Web Server
----------------------------------------------------------------------
Enabled:                              Yes
Direction:                            In
Profiles:                             Domain,Private,Public
LocalIP:                              Any
RemoteIP:                             Any
Protocol:                             TCP
LocalPort:                            80
RemotePort:                           Any
Action:                               Allow

Rule Name:                            Block Telnet
----------------------------------------------------------------------
Enabled:                              Yes
Direction:                            In
Protocol:                             Any
Action:                               Block

Rule Name:                            Alt Web
----------------------------------------------------------------------
Protocol:                             UDP
LocalPort:                            80
Action:                               Allow

Rule Name:                            Core Networking
----------------------------------------------------------------------
Protocol:                             ICMPv4
LocalPort:                            Any
Action:                               Allow

Rule Name:                            Test Rule
----------------------------------------------------------------------
LocalPort:                            Any
Action:                               Block
Ok.
`

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"one profile on", allProfilesOutput, StatusActive},
		{"lower case", "state      on", StatusActive},
		{"all off", "State    OFF\nState    OFF", StatusInactive},
		{"empty", "", StatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.output))
		})
	}
}

func TestParseRules(t *testing.T) {
	rules := ParseRules(runner.Decode([]byte(showRuleOutput)))
	require.Len(t, rules, 5)

	assert.Equal(t, Rule{Name: "Web Server", Port: "80", Protocol: "TCP", Action: "Allow"}, rules[0])
	assert.Equal(t, Rule{Name: "Block Telnet", Port: "Any", Protocol: "Any", Action: "Block"}, rules[1])
	assert.Equal(t, "Core Networking", rules[3].Name)
	assert.Equal(t, Rule{Name: "Test Rule", Port: "Any", Protocol: "Any", Action: "Block"}, rules[4])
}

func TestParseRules_Defaults(t *testing.T) {
	rules := ParseRules("Rule Name: Bare\n-----")
	require.Len(t, rules, 1)
	assert.Equal(t, Rule{Name: "Bare", Port: "Any", Protocol: "Any", Action: "Unknown"}, rules[0])

	assert.Empty(t, ParseRules(""))
	assert.Empty(t, ParseRules("Rule Name:   \n"))
}

func TestSelectRules(t *testing.T) {
	rules := ParseRules(runner.Decode([]byte(showRuleOutput)))

	selected := SelectRules(rules)

	require.Len(t, selected, 3)
	assert.Equal(t, "Web Server", selected[0].Name)
	assert.Equal(t, "Block Telnet", selected[1].Name)
	assert.Equal(t, "Alt Web", selected[2].Name)
}

func TestSelectRules_Filter(t *testing.T) {
	rules := []Rule{
		{Name: "plain", Port: "Any"},
		{Name: "test lower", Port: "Any"},
		{Name: "block lower", Port: "Any"},
		{Name: "ranges", Port: "Any,80"},
		{Name: "MyTestRule", Port: "Any"},
	}

	selected := SelectRules(rules)

	require.Len(t, selected, 2)
	assert.Equal(t, "ranges", selected[0].Name)
	assert.Equal(t, "MyTestRule", selected[1].Name)
	assert.NotNil(t, SelectRules(nil))
}

func TestNetsh_Status(t *testing.T) {
	r := &fakeRunner{result: runner.Result{Success: true, Output: allProfilesOutput}}
	n := NewNetsh(zerolog.Nop(), r, "")

	st := n.Status(context.Background())

	assert.Equal(t, Status{Success: true, Status: StatusActive, Profile: AllProfiles}, st)
	assert.Equal(t, [][]string{{"netsh", "advfirewall", "show", "allprofiles"}}, r.calls)
}

func TestNetsh_StatusFailure(t *testing.T) {
	r := &fakeRunner{result: runner.Failure("Command failed.")}
	n := NewNetsh(zerolog.Nop(), r, "")

	st := n.Status(context.Background())

	assert.Equal(t, Status{Success: false, Error: "Command failed."}, st)
}

func TestNetsh_SetState(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"on", "on"},
		{"ON", "on"},
		{"On", "on"},
		{"off", "off"},
		{"enable", "off"},
		{"", "off"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := &fakeRunner{result: runner.Result{Success: true, Output: "Ok."}}
			n := NewNetsh(zerolog.Nop(), r, "")

			res := n.SetState(context.Background(), tt.input)

			assert.Equal(t, runner.Result{Success: true, Output: "Ok."}, res)
			assert.Equal(t, [][]string{{"netsh", "advfirewall", "set", "allprofiles", "state", tt.want}}, r.calls)
		})
	}
}

func TestNetsh_AddRule(t *testing.T) {
	r := &fakeRunner{result: runner.Failure("A specified value is not valid.")}
	n := NewNetsh(zerolog.Nop(), r, `C:\windows\system32\netsh.exe`)

	res := n.AddRule(context.Background(), NewRule{Name: "My Rule", Port: "80x", Protocol: "TCP", Action: "Block"})

	assert.Equal(t, runner.Failure("A specified value is not valid."), res)
	assert.Equal(t, [][]string{{
		`C:\windows\system32\netsh.exe`, "advfirewall", "firewall", "add", "rule",
		"name=My Rule", "dir=in", "action=block", "protocol=tcp", "localport=80x",
	}}, r.calls)
}

func TestNetsh_Rules(t *testing.T) {
	r := &fakeRunner{result: runner.Result{Success: true, Output: runner.Decode([]byte(showRuleOutput))}}
	n := NewNetsh(zerolog.Nop(), r, "")

	list := n.Rules(context.Background())

	assert.True(t, list.Success)
	assert.Len(t, list.Rules, 3)
	assert.Equal(t, [][]string{{"netsh", "advfirewall", "firewall", "show", "rule", "name=all"}}, r.calls)
}

func TestNetsh_RulesFailure(t *testing.T) {
	r := &fakeRunner{result: runner.Failure("boom")}
	n := NewNetsh(zerolog.Nop(), r, "")

	list := n.Rules(context.Background())

	assert.False(t, list.Success)
	assert.NotNil(t, list.Rules)
	assert.Empty(t, list.Rules)
}

func TestNew(t *testing.T) {
	fw, err := New(zerolog.Nop(), &fakeRunner{}, "netsh", "")
	require.NoError(t, err)
	assert.IsType(t, &Netsh{}, fw)

	_, err = New(zerolog.Nop(), &fakeRunner{}, "nftables", "")
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}
