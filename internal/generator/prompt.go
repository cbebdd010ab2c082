package generator

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/project-planner/internal/model"
)

const systemPrompt = `You suggest software project ideas for developers who want to practise.
Reply with JSON only: {"ideas": [{"name": "...", "description": "..."}]}.
Names are short titles. Descriptions are two or three sentences covering features and the stack.`

var complexityHints = map[model.Complexity]string{
	model.ComplexityEasy:   "beginner friendly, finishable in a weekend",
	model.ComplexityMedium: "intermediate, a few weeks of work with some moving parts",
	model.ComplexityHard:   "advanced, involving non-trivial architecture or algorithms",
}

// Prompt renders the user message for a creation request.
func Prompt(req model.CreationRequest, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d project ideas for a collection called %q.\n", count, req.Name)

	switch req.ProjectType {
	case model.ProjectTypeFrontend:
		lang := "TypeScript"
		if req.IncludeScriptingLanguage {
			lang = "JavaScript"
		}
		fmt.Fprintf(&b, "Project type: frontend web application written in %s.\n", lang)
	case model.ProjectTypeBackend:
		b.WriteString("Project type: backend service or API.\n")
	case model.ProjectTypeFullStack:
		b.WriteString("Project type: full stack application with both frontend and backend.\n")
	}

	if hint, ok := complexityHints[req.Complexity]; ok {
		fmt.Fprintf(&b, "Complexity: %s (%s).\n", req.Complexity, hint)
	}
	if tech := strings.TrimSpace(req.AdditionalTechnologies); tech != "" {
		fmt.Fprintf(&b, "Each idea must use: %s.\n", tech)
	}
	return b.String()
}
