package planner

import "rampup/model"

// Field caps applied by the normalizer. Longer values are clipped silently.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

// Normalize fills missing optional fields with their defaults and enforces
// the string length caps on a structurally valid plan: tasks get
// is_required=true, empty acceptance criteria, 2.0 estimated hours and empty
// depends_on; steps get order=1 and an empty description. Normalize is
// idempotent: running it on an already-normalized plan changes nothing.
func Normalize(p *model.Plan) {
	if p == nil {
		return
	}
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.IsRequired == nil {
			t.IsRequired = model.BoolPtr(true)
		}
		if t.AcceptanceCriteria == nil {
			t.AcceptanceCriteria = []string{}
		}
		if t.EstimatedTimeHours == nil {
			t.EstimatedTimeHours = model.Float64Ptr(2.0)
		}
		if t.DependsOn == nil {
			t.DependsOn = []string{}
		}
		t.Title = model.Clip(t.Title, maxTitleLen)
		t.Description = model.Clip(t.Description, maxDescriptionLen)
	}
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.Order == 0 {
			s.Order = 1
		}
		s.Title = model.Clip(s.Title, maxTitleLen)
		s.Description = model.Clip(s.Description, maxDescriptionLen)
	}
}
