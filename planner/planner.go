// Package planner generates onboarding plans: it builds prompts, selects a
// generation backend, runs raw output through the repair pipeline and
// normalizes the result. Generation is total: when the LLM backend is
// unconfigured or fails, the deterministic template generator takes over, so
// callers always receive a usable plan.
package planner

import (
	"context"
	"log"
	"strings"
	"time"

	"rampup/llm"
	"rampup/model"
	"rampup/repair"
)

// docChunkLimit bounds how many documentation chunks are joined into the
// user prompt.
const docChunkLimit = 5

// Generator produces onboarding plans for a role.
type Generator struct {
	client   llm.Client // nil means no backend configured
	pipeline *repair.Pipeline
}

// New creates a Generator. client may be nil, in which case every request is
// served by the template generator. rep receives repair diagnostics; nil
// discards them.
func New(client llm.Client, rep repair.Reporter) *Generator {
	return &Generator{
		client:   client,
		pipeline: repair.New(rep),
	}
}

// Generate produces a normalized onboarding plan plus its generation
// metadata. It never fails: backend problems degrade to the template
// generator and malformed output is repaired or replaced.
func (g *Generator) Generate(ctx context.Context, role, stack string, docChunks []string) (*model.Plan, model.Metadata) {
	system := BuildSystemPrompt()
	limit := len(docChunks)
	if limit > docChunkLimit {
		limit = docChunkLimit
	}
	documentation := strings.Join(docChunks[:limit], " ")
	user := BuildUserPrompt(role, stack, documentation)

	meta := model.Metadata{
		PromptHash:  PromptHash(system, user),
		Role:        role,
		Stack:       stack,
		GeneratedAt: time.Now().UTC(),
	}

	if g.client == nil {
		log.Printf("no generation backend configured, using template plan for role %q", role)
		plan := TemplatePlan(role, stack, docChunks)
		meta.Model = model.ModelTemplateBased
		meta.Method = model.MethodTemplateFallback
		Normalize(plan)
		return plan, meta
	}

	raw, err := g.client.Complete(ctx, system, user)
	if err != nil {
		// Backend unavailable is not an error for the caller; degrade
		// immediately, no retry.
		log.Printf("generation backend failed for role %q: %v", role, err)
		plan := TemplatePlan(role, stack, docChunks)
		meta.Model = model.ModelTemplateBased
		meta.Method = model.MethodTemplateFallback
		meta.FallbackReason = err.Error()
		Normalize(plan)
		return plan, meta
	}

	meta.Model = g.client.Model()
	meta.Method = model.MethodTogetherAI
	meta.RawOutputLen = len(raw)

	plan, tier, err := g.pipeline.Parse(raw)
	if err != nil {
		// Cannot happen with the default tiers; custom strategy sets can
		// exhaust, and the caller still gets a plan.
		log.Printf("repair cascade exhausted for role %q, using template plan: %v", role, err)
		plan = TemplatePlan(role, stack, docChunks)
		meta.Model = model.ModelTemplateBased
		meta.Method = model.MethodTemplateFallback
		meta.FallbackReason = err.Error()
	} else if tier != "direct" {
		log.Printf("recovered plan for role %q via repair tier %q", role, tier)
	}

	Normalize(plan)
	return plan, meta
}
