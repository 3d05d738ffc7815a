// Package nlu turns free text into structured intents using an
// OpenAI-compatible tool-calling endpoint (Groq by default).
//
// Nothing here returns errors to the caller: a missing credential or a
// failed remote call becomes a single query intent carrying the message.
package nlu

import (
	"context"
	"strings"
	"time"

	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/models"
)

// Persona selects the voice and the model used for a request.
type Persona string

const (
	Jarvis Persona = "JARVIS"
	Friday Persona = "FRIDAY"
	Vision Persona = "VISION"
)

// ParsePersona maps free text to a Persona, defaulting to Jarvis.
func ParsePersona(s string) Persona {
	switch p := Persona(strings.ToUpper(strings.TrimSpace(s))); p {
	case Friday, Vision:
		return p
	}
	return Jarvis
}

// Default model names per persona.
const (
	DefaultJarvisModel = "llama-3.3-70b-versatile"
	DefaultFridayModel = "llama-3.1-8b-instant"
	DefaultVisionModel = "llama-3.3-70b-versatile"
)

// Model picks the model for p from sel, falling back to the defaults.
func Model(sel models.ModelSelection, p Persona) string {
	switch p {
	case Friday:
		return firstNonEmpty(sel.Friday, DefaultFridayModel)
	case Vision:
		return firstNonEmpty(sel.Vision, DefaultVisionModel)
	default:
		return firstNonEmpty(sel.Jarvis, DefaultJarvisModel)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Request is everything the model sees for one utterance.
type Request struct {
	Text          string
	APIKey        string // overrides the configured key when set
	Models        models.ModelSelection
	Persona       Persona
	Memory        []string
	Tasks         []models.Task
	Projects      []models.Project
	ContextTaskID string
	Now           time.Time
}

// Parser resolves an utterance into intents. Implementations never fail;
// problems are reported as a query intent.
type Parser interface {
	Parse(ctx context.Context, req Request) []intent.Intent
}

// BriefRequest is the input for a daily briefing.
type BriefRequest struct {
	APIKey   string
	Model    string
	Username string
	Tasks    []models.Task
	Events   []models.CalendarEvent
	Memory   []string
	Weather  string
	Now      time.Time
}

// Briefer writes the daily briefing text.
type Briefer interface {
	Brief(ctx context.Context, req BriefRequest) string
}
