// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes HUD tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jarvis/internal/hud"
	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/layout"
)

// Surface identifies commands submitted over MCP for the busy guard.
const Surface = "mcp"

// ContractURI is the resource holding the intent contract.
const ContractURI = "hud://intent-contract"

// Server wraps the MCP server with HUD tools.
type Server struct {
	mcp *server.MCPServer
	hud *hud.Session
}

// New creates a new MCP server with all HUD tools registered.
func New(s *hud.Session, version string) *Server {
	srv := &Server{hud: s}

	srv.mcp = server.NewMCPServer(
		"J.A.R.V.I.S.",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	srv.mcp.AddTool(mcp.NewTool("submit_directive",
		mcp.WithDescription("Send a natural-language directive to the HUD. It is interpreted into intents; "+
			"creations and destructive changes wait in the approval queue unless alert mode is on."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The directive, e.g. 'open tasks and start a pomodoro'")),
		mcp.WithString("persona", mcp.Description("Assistant persona: JARVIS, FRIDAY or VISION")),
	), srv.submitDirective)

	srv.mcp.AddTool(mcp.NewTool("dispatch_intents",
		mcp.WithDescription("Dispatch already structured intents. Read the intent contract first via "+
			"get_intent_contract or the "+ContractURI+" resource."),
		mcp.WithArray("intents", mcp.Required(),
			mcp.Description("Intent objects following the intent contract"),
			mcp.Items(map[string]any{"type": "object"})),
	), srv.dispatchIntents)

	srv.mcp.AddTool(mcp.NewTool("manage_window",
		mcp.WithDescription("Open, close, resize or focus one HUD panel. Size is a percentage of the row."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Panel kind"), mcp.Enum(kindNames()...)),
		mcp.WithString("action", mcp.Required(), mcp.Enum("OPEN", "CLOSE", "RESIZE", "FOCUS")),
		mcp.WithNumber("size", mcp.Description("Percentage of the row (1-100) for OPEN, FOCUS or RESIZE")),
		mcp.WithBoolean("clearHUD", mcp.Description("Close every panel first")),
	), srv.manageWindow)

	srv.mcp.AddTool(mcp.NewTool("get_hud_state",
		mcp.WithDescription("Return the full HUD state: layout, mode, workspace, pending approvals and status."),
	), srv.getState)

	srv.mcp.AddTool(mcp.NewTool("list_pending_actions",
		mcp.WithDescription("List intents waiting for approval."),
	), srv.listPending)

	srv.mcp.AddTool(mcp.NewTool("approve_action",
		mcp.WithDescription("Execute one pending action."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Pending action id")),
	), srv.approve)

	srv.mcp.AddTool(mcp.NewTool("reject_action",
		mcp.WithDescription("Discard one pending action without executing it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Pending action id")),
	), srv.reject)

	srv.mcp.AddTool(mcp.NewTool("revert_layout",
		mcp.WithDescription("Undo the last layout change."),
	), srv.revert)

	srv.mcp.AddTool(mcp.NewTool("get_intent_contract",
		mcp.WithDescription("Returns the intent contract accepted by dispatch_intents."),
	), srv.getContract)

	srv.mcp.AddResource(
		mcp.NewResource(ContractURI, "Intent Contract",
			mcp.WithResourceDescription("Action tags and payload shapes the HUD dispatcher accepts."),
			mcp.WithMIMEType("text/markdown"),
		),
		srv.readContractResource,
	)

	return srv
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func kindNames() []string {
	kinds := layout.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) submitDirective(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.hud.Submit(ctx, hud.Command{
		Text:    text,
		Surface: Surface,
		Persona: req.GetString("persona", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep)
}

func (s *Server) dispatchIntents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["intents"]
	if !ok {
		return mcp.NewToolResultError("intents is required"), nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	intents, err := intent.DecodeBatch(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.hud.Dispatch(ctx, intents)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep)
}

// manageWindow goes through the dispatcher so the change lands in the
// undo history like any spoken layout command.
func (s *Server) manageWindow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var wd intent.WindowData
	if err := json.Unmarshal(data, &wd); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for i, in := range wd.Instructions {
		in = in.Normalize()
		if err := in.Validate(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid instruction: %v", err)), nil
		}
		wd.Instructions[i] = in
	}
	rep, err := s.hud.Dispatch(ctx, []intent.Intent{{Kind: intent.ManageWindow, Window: &wd}})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep)
}

func (s *Server) getState(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.hud.State(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (s *Server) listPending(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.hud.Pending(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no pending actions"), nil
	}
	return jsonResult(items)
}

func (s *Server) approve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.hud.Approve(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(out)
}

func (s *Server) reject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.hud.Reject(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("rejected: %s", id)), nil
}

func (s *Server) revert(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := s.hud.Revert(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultText("no history available"), nil
	}
	return mcp.NewToolResultText("view reverted"), nil
}

func (s *Server) getContract(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(IntentContract), nil
}

func (s *Server) readContractResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     IntentContract,
		},
	}, nil
}
