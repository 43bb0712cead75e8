package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"rampup/model"
)

// Documentation caps for the user prompt. The excerpt is truncated twice:
// once when the combined documentation is captured, and again when it is
// embedded, so intermediate storage and the final prompt are bounded
// independently.
const (
	maxDocLength   = 2000
	maxDocEmbedded = 1000
)

// systemPrompt is fixed for all requests. It demands JSON-only output in the
// exact schema the repair pipeline expects.
const systemPrompt = `You are an expert onboarding architect. Generate a comprehensive, detailed onboarding plan as JSON. Output ONLY valid JSON, no other text.

REQUIREMENTS:
- Create 8-12 detailed steps (not just 3-4)
- Each step should cover a specific domain/area
- Include 2-4 tasks per step
- Make steps comprehensive and thorough
- Cover: Environment Setup, Development Tools, Project Architecture, Database, Testing, CI/CD, Documentation, etc.

Format:
{
  "steps": [
    {"id": "S1", "title": "Environment Setup", "order": 1, "description": "Set up development environment and tools"}
  ],
  "tasks": [
    {"step_id": "S1", "title": "Install tools", "is_required": true, "description": "Install Docker and IDE", "acceptance_criteria": ["Tools installed"], "estimated_time_hours": 2.0, "depends_on": []}
  ]
}

Create a comprehensive plan with 8-12 steps covering all aspects of the role.`

// BuildSystemPrompt returns the fixed system instruction.
func BuildSystemPrompt() string { return systemPrompt }

// BuildUserPrompt returns the per-request instruction embedding the role
// name, technology stack and a bounded documentation excerpt.
func BuildUserPrompt(role, stack, documentation string) string {
	documentation = model.Truncate(documentation, maxDocLength)

	docSection := ""
	if documentation != "" {
		docSection = fmt.Sprintf("\n\nDocumentation:\n%s", model.Clip(documentation, maxDocEmbedded))
	}

	return fmt.Sprintf(`Create a comprehensive onboarding plan for: %s
Technology stack: %s%s

REQUIREMENTS:
- Generate 8-12 detailed steps (not just 3-4)
- Each step should be specific and actionable
- Include tasks for: Environment Setup, Development Tools, Project Architecture, Database Setup, Testing, CI/CD, Documentation, Code Review, etc.
- Make it thorough and comprehensive
- Base steps on the provided documentation when available
- Each task should have clear acceptance criteria and time estimates

Generate detailed JSON with comprehensive steps and tasks for onboarding this role.`, role, stack, docSection)
}

// PromptHash returns the hex SHA-256 digest of the concatenated prompt pair,
// used as an audit fingerprint for reproducibility.
func PromptHash(system, user string) string {
	sum := sha256.Sum256([]byte(system + user))
	return hex.EncodeToString(sum[:])
}
