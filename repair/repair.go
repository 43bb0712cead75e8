// Package repair turns unreliable generated text into a structurally valid
// onboarding plan.
//
// Generative models reliably produce near-valid but not strictly valid JSON:
// truncated output, missing commas, quoted booleans, prose wrapped around the
// object. The pipeline runs an ordered cascade of repair strategies, from a
// plain parse through exact bracket/brace counting to regex heuristics, and
// finally a guaranteed minimal plan. Each strategy is best-effort: there is
// no promise of recovering the model's intended content, only of recovering
// a plan that satisfies the structural invariants.
package repair

import (
	"encoding/json"
	"fmt"
	"strings"

	"rampup/model"
)

// Strategy is one tier of the repair cascade. Repair reports ok=false when
// the tier cannot produce a plan from the text; the driver then escalates to
// the next tier.
type Strategy interface {
	Name() string
	Repair(text string) (plan *model.Plan, ok bool)
}

// Pipeline runs strategies in strict order and stops at the first one that
// yields a structurally valid, non-empty plan.
type Pipeline struct {
	strategies []Strategy
	reporter   Reporter
}

// New creates a pipeline with the default tier order:
// direct extraction, bracket-counted array repair, per-object split,
// syntax-heuristic repair, separate regex extraction, guaranteed minimal plan.
// A nil reporter discards diagnostics.
func New(rep Reporter) *Pipeline {
	if rep == nil {
		rep = NopReporter{}
	}
	return &Pipeline{
		strategies: []Strategy{
			directExtract{},
			arrayRepair{},
			objectSplit{rep: rep},
			syntaxRepair{},
			regexExtract{},
			minimalPlan{},
		},
		reporter: rep,
	}
}

// NewWithStrategies creates a pipeline running the given tiers in order.
// Unlike the default set, a custom set carries no guarantee of success:
// Parse returns an error when every tier fails.
func NewWithStrategies(rep Reporter, strategies ...Strategy) *Pipeline {
	if rep == nil {
		rep = NopReporter{}
	}
	return &Pipeline{strategies: strategies, reporter: rep}
}

// Parse runs the cascade on raw generated text. It returns the recovered plan
// and the name of the tier that produced it. The final tier cannot fail, so
// with the default strategies Parse never returns an error; the error return
// exists for custom strategy sets and lets callers fall back to the template
// generator.
func (p *Pipeline) Parse(raw string) (*model.Plan, string, error) {
	text := strings.TrimSpace(raw)
	for _, s := range p.strategies {
		plan, ok := s.Repair(text)
		if !ok {
			p.reporter.Report(Event{Tier: s.Name(), Outcome: OutcomeFailed})
			continue
		}
		if plan.Empty() {
			p.reporter.Report(Event{Tier: s.Name(), Outcome: OutcomeEmpty})
			continue
		}
		// A tier that parses JSON of the wrong shape counts as failed.
		if err := plan.Validate(); err != nil {
			p.reporter.Report(Event{Tier: s.Name(), Outcome: OutcomeInvalid, Detail: err.Error()})
			continue
		}
		p.reporter.Report(Event{
			Tier:    s.Name(),
			Outcome: OutcomeOK,
			Detail:  fmt.Sprintf("%d steps, %d tasks", len(plan.Steps), len(plan.Tasks)),
		})
		return plan, s.Name(), nil
	}
	return nil, "", fmt.Errorf("all repair tiers exhausted")
}

// decodePlan parses a JSON object into a plan.
func decodePlan(jsonStr string) (*model.Plan, error) {
	var p model.Plan
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// braceSpan returns the substring from the first '{' to the last '}'.
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
