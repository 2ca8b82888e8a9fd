package harness

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/typetrace/typetrace/internal/event"
)

// Scenario defines a conformance test scenario: a raw capture stream and
// the expectations the compressed log and its replay must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Events is the raw capture stream, in capture order.
	Events []EventStep `yaml:"events"`

	// Expect holds the assertions for this scenario.
	Expect Expectation `yaml:"expect"`
}

// EventStep is one raw capture event. Type selects the variant and decides
// which of the remaining fields apply.
type EventStep struct {
	// Type is "key", "special", "paste", or "selection".
	Type string `yaml:"type"`

	// Key is the character for "key" events, or the special key name
	// (Backspace, Enter, Delete, Arrow*) for "special" events.
	Key string `yaml:"key,omitempty"`

	// Content is the inserted text for "paste" events.
	Content string `yaml:"content,omitempty"`

	// Start and End are the selection bounds for "selection" events.
	Start int `yaml:"start,omitempty"`
	End   int `yaml:"end,omitempty"`

	// TimeMS is the capture timestamp in milliseconds.
	TimeMS float64 `yaml:"time_ms"`
}

// Expectation holds the scenario's assertions. Entries and the final state
// checks are each optional; the structural invariants and the round-trip
// property are always checked.
type Expectation struct {
	// Entries is the expected wire-tag sequence of the compressed log
	// (COMPRESSED, RAW_KEY, ...). Nil skips the check; an empty list
	// asserts an empty log.
	Entries []string `yaml:"entries"`

	// FinalText is the expected buffer text after replay. Nil skips.
	FinalText *string `yaml:"final_text"`

	// Cursor is the expected cursor position after replay. Nil skips.
	Cursor *int `yaml:"cursor"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	// Strict field validation catches typos like "event:" vs "events:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	prev := math.Inf(-1)
	for i, step := range s.Events {
		switch step.Type {
		case "key":
			if step.Key == "" {
				return fmt.Errorf("events[%d]: key is required for key events", i)
			}
		case "special":
			if !event.SpecialKey(step.Key).Known() {
				return fmt.Errorf("events[%d]: unknown special key %q", i, step.Key)
			}
		case "paste", "selection":
		default:
			return fmt.Errorf("events[%d]: unknown event type %q", i, step.Type)
		}
		if step.TimeMS < prev {
			return fmt.Errorf("events[%d]: time_ms %v decreases below %v", i, step.TimeMS, prev)
		}
		prev = step.TimeMS
	}
	return nil
}

// rawEvents converts the scenario steps into capture events. Validation
// has already rejected anything this cannot represent.
func (s *Scenario) rawEvents() []event.Raw {
	events := make([]event.Raw, 0, len(s.Events))
	for _, step := range s.Events {
		switch step.Type {
		case "key":
			events = append(events, event.KeyPress{Key: step.Key, At: step.TimeMS})
		case "special":
			events = append(events, event.SpecialPress{Key: event.SpecialKey(step.Key), At: step.TimeMS})
		case "paste":
			events = append(events, event.Paste{Content: step.Content, At: step.TimeMS})
		case "selection":
			events = append(events, event.Selection{Start: step.Start, End: step.End, At: step.TimeMS})
		}
	}
	return events
}
