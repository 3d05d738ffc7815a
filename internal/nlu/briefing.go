package nlu

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	// NoBriefingMessage is used when the model returns nothing.
	NoBriefingMessage = "Systems nominal. No briefing data generated."
	// MissingBriefingKeyMessage is returned without calling the model.
	MissingBriefingKeyMessage = "Authentication credentials missing. Please configure Groq API Key in Settings."
)

// Brief implements Briefer.
func (g *Groq) Brief(ctx context.Context, req BriefRequest) string {
	key := g.key(req.APIKey)
	if key == "" {
		return MissingBriefingKeyMessage
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	model := firstNonEmpty(req.Model, g.cfg.Models.Vision, DefaultVisionModel)

	resp, err := g.client(key).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: briefingPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: briefingData(req)},
		},
		Temperature:         0.6,
		MaxCompletionTokens: 1024,
	})
	if err != nil {
		g.log.Error("nlu: briefing failed", slog.String("error", err.Error()))
		return fmt.Sprintf("Briefing Error: %s. Ensure API Key is valid.", err.Error())
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return NoBriefingMessage
	}
	return resp.Choices[0].Message.Content
}

func briefingPrompt(req BriefRequest) string {
	weather := req.Weather
	if weather == "" {
		weather = "unavailable"
	}
	mem := req.Memory
	if len(mem) > 5 {
		mem = mem[len(mem)-5:]
	}
	return fmt.Sprintf(`You are VISION, a highly advanced AI synthesizer.
Your goal is to provide a tactical Morning Briefing for %s.

INPUT DATA:
- Time: %s
- Weather: %s
- Active Protocols: %d tasks
- Calendar Events: %d events
- Memory Context: %s

INSTRUCTIONS:
1. Analyze the schedule and tasks.
2. Prioritize critical items (High Priority).
3. Provide a strategic recommendation for the day.

FORMAT:
- Technical, concise, elegant language.
- Use Markdown for bolding key terms.
- Keep it under 200 words.`,
		req.Username, req.Now.Format("Mon, 02 Jan 2006 15:04"), weather,
		len(req.Tasks), len(req.Events), strings.Join(mem, "; "))
}

func briefingData(req BriefRequest) string {
	var b strings.Builder
	b.WriteString("ACTIVE TASKS:")
	for _, t := range req.Tasks {
		if t.Completed {
			continue
		}
		fmt.Fprintf(&b, "\n- [%s] %s", strings.ToUpper(t.Priority), t.Title)
		if t.DueTime != "" {
			b.WriteString(" @ " + t.DueTime)
		}
	}
	b.WriteString("\n\nCALENDAR:")
	for _, e := range req.Events {
		fmt.Fprintf(&b, "\n- %s (%s)", e.Title, e.Start)
	}
	return b.String()
}
