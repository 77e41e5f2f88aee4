package services

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// BotDetector decides whether a login belongs to an automated account
type BotDetector interface {
	IsBot(login string) bool
}

// DefaultKnownBots are exact-match bot logins
var DefaultKnownBots = []string{
	"copilot-pull-request-reviewer",
	"github-actions",
	"dependabot",
	"renovate",
	"greenkeeper",
	"codecov",
	"snyk-bot",
	"sonarcloud",
	"whitesource-bolt",
	"allcontributors",
	"stale",
	"plus-1-bot-production",
	"plus-1-bot-staging",
	"square-cloud-cd-pr-bot-production",
	"square-cloud-cd-pr-bot-staging",
	"svc-block-automated-reviews",
}

// DefaultBotPatterns are structural bot login patterns
var DefaultBotPatterns = []string{
	`bot$`,
	`^bot-`,
	`-bot-`,
	`\[bot\]`,
	`^dependabot`,
	`^renovate`,
	`^github-actions`,
	`copilot.*reviewer`,
	`^greenkeeper`,
	`^snyk`,
	`^codecov`,
	`^sonarcloud`,
	`^whitesource`,
	`^allcontributors`,
	`^stale`,
	`^svc-`,
	`^square-cloud-`,
	`^plus-1-bot`,
	`-reviews$`,
}

// BotFilter matches logins against known names and patterns, case-insensitively
type BotFilter struct {
	known    map[string]struct{}
	patterns []*regexp.Regexp
}

type botFilterFile struct {
	KnownBots []string `yaml:"known_bots"`
	Patterns  []string `yaml:"patterns"`
}

// NewBotFilter compiles the given names and patterns
func NewBotFilter(knownBots, patterns []string) (*BotFilter, error) {
	filter := &BotFilter{known: make(map[string]struct{}, len(knownBots))}
	for _, name := range knownBots {
		filter.known[strings.ToLower(name)] = struct{}{}
	}
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid bot pattern %q: %w", pattern, err)
		}
		filter.patterns = append(filter.patterns, re)
	}
	return filter, nil
}

// DefaultBotFilter returns the filter built from the default lists
func DefaultBotFilter() *BotFilter {
	filter, err := NewBotFilter(DefaultKnownBots, DefaultBotPatterns)
	if err != nil {
		panic(err)
	}
	return filter
}

// LoadBotFilter reads a YAML file with known_bots and patterns lists.
// An empty path yields the default filter.
func LoadBotFilter(path string) (*BotFilter, error) {
	if path == "" {
		return DefaultBotFilter(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot config: %w", err)
	}
	var file botFilterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse bot config: %w", err)
	}
	return NewBotFilter(file.KnownBots, file.Patterns)
}

// IsBot checks if a login belongs to a bot. Empty logins are not bots.
func (f *BotFilter) IsBot(login string) bool {
	if login == "" {
		return false
	}
	normalized := strings.ToLower(login)
	if _, ok := f.known[normalized]; ok {
		return true
	}
	for _, re := range f.patterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}
