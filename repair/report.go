package repair

import "log"

// Outcome classifies what happened when a tier ran.
type Outcome string

const (
	// OutcomeOK means the tier produced a structurally valid plan.
	OutcomeOK Outcome = "ok"
	// OutcomeFailed means the tier could not parse anything.
	OutcomeFailed Outcome = "failed"
	// OutcomeInvalid means the tier parsed JSON of the wrong shape.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeEmpty means the tier parsed a plan with no steps and no tasks.
	OutcomeEmpty Outcome = "empty"
	// OutcomeDropped means a single corrupt object was discarded.
	OutcomeDropped Outcome = "dropped_object"
)

// Event is a single diagnostic emitted by the pipeline.
type Event struct {
	Tier    string
	Outcome Outcome
	Detail  string
}

// Reporter receives diagnostic events from the pipeline. It replaces ambient
// logging so tests can assert on emitted events without scraping log text.
type Reporter interface {
	Report(Event)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Report(Event) {}

// LogReporter writes events to the standard logger.
type LogReporter struct{}

func (LogReporter) Report(e Event) {
	if e.Detail != "" {
		log.Printf("repair: tier=%s outcome=%s: %s", e.Tier, e.Outcome, e.Detail)
		return
	}
	log.Printf("repair: tier=%s outcome=%s", e.Tier, e.Outcome)
}
