package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/metrics"
	"github.com/starford/jarvis/internal/models"
)

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// MissingKeyMessage is returned as a query when no API key is available.
const MissingKeyMessage = "Authorization failed. Please access Settings and input a valid Groq API Key."

// Config configures the Groq client.
type Config struct {
	BaseURL string
	APIKey  string
	Models  models.ModelSelection
	Timeout time.Duration
}

// Groq implements Parser and Briefer over go-openai.
type Groq struct {
	cfg     Config
	httpc   *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
}

var (
	_ Parser  = (*Groq)(nil)
	_ Briefer = (*Groq)(nil)
)

// NewGroq creates a client. A zero Timeout means 30 seconds.
func NewGroq(cfg Config, log *slog.Logger, m *metrics.Metrics) *Groq {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Groq{cfg: cfg, httpc: &http.Client{Timeout: cfg.Timeout}, log: log, metrics: m}
}

func (g *Groq) client(key string) *openai.Client {
	oc := openai.DefaultConfig(key)
	oc.BaseURL = g.cfg.BaseURL
	oc.HTTPClient = g.httpc
	return openai.NewClientWithConfig(oc)
}

func (g *Groq) key(override string) string {
	return firstNonEmpty(override, g.cfg.APIKey)
}

func (g *Groq) withDefaults(sel models.ModelSelection) models.ModelSelection {
	sel.Jarvis = firstNonEmpty(sel.Jarvis, g.cfg.Models.Jarvis)
	sel.Friday = firstNonEmpty(sel.Friday, g.cfg.Models.Friday)
	sel.Vision = firstNonEmpty(sel.Vision, g.cfg.Models.Vision)
	return sel
}

// Parse implements Parser.
func (g *Groq) Parse(ctx context.Context, req Request) []intent.Intent {
	key := g.key(req.APIKey)
	if key == "" {
		return []intent.Intent{intent.QueryIntent(MissingKeyMessage)}
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	persona := req.Persona
	if persona == "" {
		persona = Jarvis
	}

	start := time.Now()
	resp, err := g.client(key).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: Model(g.withDefaults(req.Models), persona),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req, persona)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Tools:               toolset,
		ToolChoice:          "auto",
		Temperature:         0.3,
		MaxCompletionTokens: 1024,
	})
	if err != nil {
		g.metrics.ObserveNLU("error", time.Since(start).Seconds())
		g.log.Error("nlu: parse failed", slog.String("error", err.Error()))
		return []intent.Intent{intent.QueryIntent("System Error: " + err.Error())}
	}
	g.metrics.ObserveNLU("ok", time.Since(start).Seconds())
	if len(resp.Choices) == 0 {
		return []intent.Intent{}
	}

	msg := resp.Choices[0].Message
	out := make([]intent.Intent, 0, len(msg.ToolCalls)+1)
	for _, call := range msg.ToolCalls {
		in := fromToolCall(call.Function.Name, call.Function.Arguments)
		in.UsedModel = string(persona)
		out = append(out, in)
	}
	if content := strings.TrimSpace(msg.Content); content != "" {
		q := intent.QueryIntent(content)
		q.UsedModel = string(persona)
		out = append(out, q)
	}
	return out
}

// fromToolCall maps one function call onto an intent. Arguments that do
// not decode produce an unknown intent carrying the reason.
func fromToolCall(name, args string) intent.Intent {
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	var (
		in  intent.Intent
		err error
	)
	decode := func(v any) { err = json.Unmarshal([]byte(args), v) }

	switch name {
	case "create_task":
		in.Kind, in.Task = intent.CreateTask, &intent.TaskData{}
		decode(in.Task)
	case "update_task":
		in.Kind, in.Task = intent.UpdateTask, &intent.TaskData{}
		decode(in.Task)
	case "delete_task":
		in.Kind, in.Task = intent.DeleteTask, &intent.TaskData{}
		decode(in.Task)
		if err == nil {
			in.Task = &intent.TaskData{ID: in.Task.ID}
		}
	case "create_event":
		in.Kind, in.Event = intent.CreateEvent, &intent.EventData{}
		decode(in.Event)
	case "create_project":
		in.Kind, in.Project = intent.CreateProject, &intent.ProjectData{}
		decode(in.Project)
	case "break_down_task":
		in.Kind, in.Breakdown = intent.BreakDownTask, &intent.BreakdownData{}
		decode(in.Breakdown)
	case "save_memory", "forget_memory":
		in.Kind, in.Memory = intent.UpdateMemory, &intent.MemoryData{}
		decode(in.Memory)
		in.Memory.Operation = intent.MemoryAdd
		if name == "forget_memory" {
			in.Memory.Operation = intent.MemoryRemove
		}
	case "manage_window":
		in.Kind, in.Window = intent.ManageWindow, &intent.WindowData{}
		decode(in.Window)
	case "save_macro":
		in.Kind, in.Macro = intent.SaveMacro, &intent.MacroData{}
		decode(in.Macro)
	case "activate_macro":
		in.Kind, in.Macro = intent.ActivateMacro, &intent.MacroData{}
		decode(in.Macro)
	case "lock_focus":
		in.Kind, in.Focus = intent.FocusLock, &intent.FocusData{Lock: true}
	case "unlock_focus":
		in.Kind, in.Focus = intent.FocusLock, &intent.FocusData{Lock: false}
	case "revert_view":
		in.Kind = intent.RevertView
	case "switch_mode":
		in.Kind, in.Mode = intent.SwitchMode, &intent.ModeData{}
		decode(in.Mode)
	case "update_theme":
		in.Kind, in.UI = intent.UpdateTheme, &intent.UIData{}
		decode(in.UI)
	case "start_timer":
		in.Kind, in.Timer = intent.StartTimer, &intent.TimerData{}
		decode(in.Timer)
	case "stop_timer":
		in.Kind = intent.StopTimer
	case "navigate_syllabus":
		in.Kind, in.Navigation = intent.NavigateSyllabus, &intent.NavigationData{}
		decode(in.Navigation)
	default:
		return intent.Intent{Kind: intent.Unknown, Reasoning: fmt.Sprintf("unsupported tool %q", name)}
	}
	if err != nil {
		return intent.Intent{Kind: intent.Unknown, Reasoning: fmt.Sprintf("bad arguments for %s: %v", name, err)}
	}
	return in
}
