package webdex

import "strings"

// RobotsRuleSet holds the resolved Allow/Disallow path-prefix lists for the
// best-matching user-agent group of a robots.txt document.
//
// Matching is deliberately naive: rules are prefix-only, and wildcard
// characters in rule paths are stripped rather than expanded.
type RobotsRuleSet struct {
	Allow    []string
	Disallow []string
}

type robotsGroup struct {
	agent    string
	allow    []string
	disallow []string
}

// ParseRobots parses robots.txt text and resolves the rule group for the
// given user-agent. Group selection prefers a group whose agent name is a
// case-insensitive substring of userAgent, falls back to the "*" group, and
// defaults to allow-all when no group applies. Malformed lines are ignored.
func ParseRobots(text, userAgent string) *RobotsRuleSet {
	var groups []robotsGroup
	var current *robotsGroup

	for _, line := range strings.Split(text, "\n") {
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)

		switch field {
		case "user-agent":
			groups = append(groups, robotsGroup{agent: strings.ToLower(value)})
			current = &groups[len(groups)-1]
		case "allow":
			if current != nil && value != "" {
				current.allow = append(current.allow, normalizeRulePath(value))
			}
		case "disallow":
			if current != nil && value != "" {
				current.disallow = append(current.disallow, normalizeRulePath(value))
			}
		}
	}

	agent := strings.ToLower(userAgent)
	var star *robotsGroup
	for i := range groups {
		g := &groups[i]
		if g.agent == "*" {
			if star == nil {
				star = g
			}
			continue
		}
		if g.agent != "" && strings.Contains(agent, g.agent) {
			return &RobotsRuleSet{Allow: g.allow, Disallow: g.disallow}
		}
	}
	if star != nil {
		return &RobotsRuleSet{Allow: star.allow, Disallow: star.disallow}
	}
	return &RobotsRuleSet{}
}

// normalizeRulePath strips wildcard characters and ensures a leading "/".
func normalizeRulePath(p string) string {
	p = strings.ReplaceAll(p, "*", "")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// IsAllowed reports whether path may be fetched under the rule set.
//
// The longest matching Disallow prefix is compared against the longest
// matching Allow prefix; the path is allowed when no Disallow rule matches
// or the Allow match is at least as long. Ties favor Allow.
func (r *RobotsRuleSet) IsAllowed(path string) bool {
	if r == nil {
		return true
	}
	if path == "" {
		path = "/"
	}

	longestDisallow := 0
	for _, rule := range r.Disallow {
		if strings.HasPrefix(path, rule) && len(rule) > longestDisallow {
			longestDisallow = len(rule)
		}
	}
	if longestDisallow == 0 {
		return true
	}

	longestAllow := 0
	for _, rule := range r.Allow {
		if strings.HasPrefix(path, rule) && len(rule) > longestAllow {
			longestAllow = len(rule)
		}
	}
	return longestAllow >= longestDisallow
}
