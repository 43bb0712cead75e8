package planner

import (
	"fmt"
	"strings"

	"rampup/model"
)

// TemplatePlan synthesizes a fixed 10-step, 20-task onboarding plan
// parameterized only by the role name and stack string. It is the
// deterministic fallback behind the LLM backend and never fails. When
// documentation chunks are supplied, a few task descriptions point the new
// joiner at them.
func TemplatePlan(role, stack string, docChunks []string) *model.Plan {
	if role == "" {
		role = "Developer"
	}
	_ = stack // reserved for stack-specific task variants

	hasDocs := false
	var docText string
	for _, c := range docChunks {
		if strings.TrimSpace(c) != "" {
			hasDocs = true
		}
	}
	if hasDocs {
		docText = strings.ToLower(strings.Join(docChunks, " "))
	}
	hasSetupInfo := hasDocs && containsAny(docText, "install", "setup", "configure", "docker")
	hasTestingInfo := hasDocs && containsAny(docText, "test", "pytest", "unittest")
	hasArchInfo := hasDocs && containsAny(docText, "architecture", "structure", "modules", "components")

	steps := []model.Step{
		{ID: "S1", Title: "Environment Setup", Order: 1,
			Description: fmt.Sprintf("Set up development environment and tools for %s role", role)},
		{ID: "S2", Title: "Development Tools Configuration", Order: 2,
			Description: "Configure IDE, linters, formatters, and development tools"},
		{ID: "S3", Title: "Project Architecture Overview", Order: 3,
			Description: "Learn about project structure, modules, and architecture"},
		{ID: "S4", Title: "Database and Data Layer", Order: 4,
			Description: "Set up and understand database configuration and models"},
		{ID: "S5", Title: "Authentication and Permissions", Order: 5,
			Description: "Understand user roles, permissions, and authentication system"},
		{ID: "S6", Title: "API and Integration Setup", Order: 6,
			Description: "Learn about APIs, external integrations, and service connections"},
		{ID: "S7", Title: "Testing Framework", Order: 7,
			Description: "Set up testing environment and learn testing practices"},
		{ID: "S8", Title: "CI/CD and Deployment", Order: 8,
			Description: "Understand build, test, and deployment processes"},
		{ID: "S9", Title: "Code Review and Standards", Order: 9,
			Description: "Learn coding standards, review process, and best practices"},
		{ID: "S10", Title: "Documentation and Knowledge Transfer", Order: 10,
			Description: "Review documentation and complete knowledge transfer"},
	}

	setupDesc := "Install required development tools and dependencies"
	if hasSetupInfo {
		setupDesc += ". Refer to uploaded onboarding documentation for specific installation steps"
	}
	readDocsDesc := "Review project documentation and README"
	if hasDocs {
		readDocsDesc = "Review project documentation, README, and uploaded onboarding materials"
	}
	archDesc := "Familiarize yourself with the project structure and architecture"
	if hasArchInfo {
		archDesc += ". Refer to uploaded documentation for architecture details"
	}
	testDesc := "Write unit tests for your changes"
	if hasTestingInfo {
		testDesc += ". Follow testing guidelines from uploaded documentation"
	}

	tasks := []model.Task{
		tmplTask("S1", "Install Development Tools", true, setupDesc, 2.0,
			"All tools installed and working", "Can run project locally"),
		tmplTask("S1", "Clone and Setup Repository", true,
			"Clone the project repository and set up local development environment", 1.0,
			"Repository cloned", "Local environment configured"),
		tmplTask("S2", "Configure IDE and Extensions", true,
			"Set up IDE with project-specific extensions and configurations", 1.0,
			"IDE configured with project settings", "Required extensions installed"),
		tmplTask("S2", "Setup Linters and Formatters", true,
			"Configure code quality and formatting tools for the project stack", 1.0,
			"Linter and formatter working", "Code style enforced"),
		tmplTask("S3", "Read Project Documentation", true, readDocsDesc, 1.0,
			"Documentation reviewed", "Understand project goals and architecture"),
		tmplTask("S3", "Explore Codebase Structure", true, archDesc, 2.0,
			"Codebase structure understood", "Can navigate main modules"),
		tmplTask("S4", "Setup Database", true,
			"Configure and set up the database environment", 1.0,
			"Database running", "Connection established"),
		tmplTask("S4", "Run Migrations", true,
			"Apply database migrations and understand data models", 1.0,
			"Migrations applied", "Data models understood"),
		tmplTask("S5", "Understand User Roles", true,
			"Learn about the RBAC system and user permission model", 1.0,
			"Role system understood", "Can explain permissions"),
		tmplTask("S5", "Test Authentication Flow", true,
			"Test login, logout, and permission-based access", 1.0,
			"Authentication working", "Permissions tested"),
		tmplTask("S6", "Explore API Endpoints", true,
			"Learn about available APIs and their usage", 2.0,
			"API endpoints documented", "Can make API calls"),
		tmplTask("S6", "Setup External Integrations", false,
			"Configure external service integrations used by the project", 2.0,
			"Integrations configured", "Test connections working"),
		tmplTask("S7", "Setup Testing Environment", true,
			"Configure testing framework and run existing tests", 1.0,
			"Tests running", "Test environment configured"),
		tmplTask("S7", "Write Your First Tests", true, testDesc, 2.0,
			"Tests written and passing", "Code coverage maintained"),
		tmplTask("S8", "Understand CI/CD Pipeline", true,
			"Learn about the build, test, and deployment process", 1.0,
			"Pipeline understood", "Can trigger builds"),
		tmplTask("S8", "Test Deployment Process", true,
			"Practice deployment to staging environment", 2.0,
			"Deployment successful", "Process documented"),
		tmplTask("S9", "Learn Coding Standards", true,
			"Study project coding standards and best practices", 1.0,
			"Standards understood", "Can apply consistently"),
		tmplTask("S9", "Participate in Code Review", true,
			"Review code from other team members and learn the process", 2.0,
			"Code review completed", "Feedback provided"),
		tmplTask("S10", "Complete Knowledge Transfer", true,
			"Final review of all documentation and knowledge sharing", 2.0,
			"All docs reviewed", "Knowledge gaps filled"),
		tmplTask("S10", "Provide Onboarding Feedback", true,
			"Share feedback on the onboarding process and suggest improvements", 1.0,
			"Feedback provided", "Process documented"),
	}

	return &model.Plan{Steps: steps, Tasks: tasks}
}

func tmplTask(stepID, title string, required bool, desc string, hours float64, criteria ...string) model.Task {
	return model.Task{
		StepID:             stepID,
		Title:              title,
		Description:        desc,
		IsRequired:         model.BoolPtr(required),
		AcceptanceCriteria: criteria,
		EstimatedTimeHours: model.Float64Ptr(hours),
		DependsOn:          []string{},
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
