package firewall

import (
	"regexp"
	"strings"
)

const (
	ruleDelimiter = "Rule Name:"

	// maxListedRules caps the listing. Earlier rule listers said "first 6"
	// in a comment but sliced three; three is kept and the mismatch is
	// unresolved.
	maxListedRules = 3

	anyValue     = "Any"
	unknownValue = "Unknown"
)

var (
	stateOnRegexp   = regexp.MustCompile(`(?i)State\s+ON`)
	localPortRegexp = regexp.MustCompile(`LocalPort:\s+(.+)`)
	protocolRegexp  = regexp.MustCompile(`Protocol:\s+(.+)`)
	actionRegexp    = regexp.MustCompile(`Action:\s+(.+)`)
)

// ParseStatus reports Active if any profile in the output of
// "netsh advfirewall show allprofiles" is switched on.
func ParseStatus(output string) string {
	if stateOnRegexp.MatchString(output) {
		return StatusActive
	}
	return StatusInactive
}

// ParseRules splits the output of "netsh advfirewall firewall show rule"
// into rule chunks, in source order.
func ParseRules(output string) []Rule {
	var rules []Rule
	for _, chunk := range strings.Split(output, ruleDelimiter) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		name := chunk
		if i := strings.Index(chunk, "\n"); i >= 0 {
			name = chunk[:i]
		}

		rules = append(rules, Rule{
			Name:     strings.TrimSpace(name),
			Port:     findField(localPortRegexp, chunk, anyValue),
			Protocol: findField(protocolRegexp, chunk, anyValue),
			Action:   findField(actionRegexp, chunk, unknownValue),
		})
	}
	return rules
}

// SelectRules keeps rules bound to a specific port or whose name mentions
// Test or Block, and returns at most maxListedRules of them.
func SelectRules(rules []Rule) []Rule {
	selected := []Rule{}
	for _, rule := range rules {
		if len(selected) == maxListedRules {
			break
		}
		if rule.Port != anyValue || strings.Contains(rule.Name, "Test") || strings.Contains(rule.Name, "Block") {
			selected = append(selected, rule)
		}
	}
	return selected
}

func findField(re *regexp.Regexp, chunk, fallback string) string {
	if match := re.FindStringSubmatch(chunk); match != nil {
		return strings.TrimSpace(match[1])
	}
	return fallback
}
