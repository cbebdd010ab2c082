package model

import (
	"strings"
	"time"
	"unicode"
)

// ProjectType is the kind of project ideas are generated for.
type ProjectType string

const (
	ProjectTypeFrontend  ProjectType = "Frontend"
	ProjectTypeBackend   ProjectType = "Backend"
	ProjectTypeFullStack ProjectType = "FullStack"
)

// Valid reports whether t is one of the known project types.
func (t ProjectType) Valid() bool {
	switch t {
	case ProjectTypeFrontend, ProjectTypeBackend, ProjectTypeFullStack:
		return true
	}
	return false
}

// Complexity is the difficulty level of generated ideas.
type Complexity string

const (
	ComplexityEasy   Complexity = "Easy"
	ComplexityMedium Complexity = "Medium"
	ComplexityHard   Complexity = "Hard"
)

// Valid reports whether c is one of the known complexity levels.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityEasy, ComplexityMedium, ComplexityHard:
		return true
	}
	return false
}

// MinNameChars is the minimum number of non-whitespace characters in a creation name.
const MinNameChars = 2

// NameChars counts the non-whitespace runes of a creation name.
func NameChars(name string) int {
	n := 0
	for _, r := range name {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// Idea is a single generated project suggestion.
type Idea struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreationRequest is the DTO for POST /api/generate-ideas.
// Field names follow the wire format used by existing clients.
type CreationRequest struct {
	Name                     string      `json:"projectName" validate:"required,minchars=2,max=255"`
	ProjectType              ProjectType `json:"appType" validate:"required,oneof=Frontend Backend FullStack"`
	IncludeScriptingLanguage bool        `json:"isJS"`
	Complexity               Complexity  `json:"complexity" validate:"required,oneof=Easy Medium Hard"`
	AdditionalTechnologies   string      `json:"additionalTech" validate:"max=500"`
}

// Normalized returns a copy with surrounding whitespace trimmed and the
// scripting flag cleared for project types where it has no meaning.
func (r CreationRequest) Normalized() CreationRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.AdditionalTechnologies = strings.TrimSpace(r.AdditionalTechnologies)
	if r.ProjectType != ProjectTypeFrontend {
		r.IncludeScriptingLanguage = false
	}
	return r
}

// GenerateIdeasResponse is the response DTO for POST /api/generate-ideas.
type GenerateIdeasResponse struct {
	Ideas []Idea `json:"message"`
}

// Creation is a named, persisted set of generated ideas.
type Creation struct {
	ID        string    `json:"-"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Ideas     []Idea    `json:"projectsIdeas"`
	CreatedAt time.Time `json:"-"`
}

// CreationsResponse is the response DTO for /api/creations.
type CreationsResponse struct {
	Creations []Creation `json:"creations"`
}

// BalanceResponse is the response DTO for GET /api/tokens.
type BalanceResponse struct {
	TokenCount int `json:"tokenCount"`
}

// Account holds a user's authoritative token balance.
type Account struct {
	UserID    string
	Tokens    int
	CreatedAt time.Time
	UpdatedAt time.Time
}
