package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func enumProp(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

var (
	workspaceIDProp = prop("string", "Workspace ID returned by setup_edge_session")
	segmentKindProp = enumProp("Segment kind", "period", "drill")
	segmentIDProp   = prop("integer", "Segment ID within its kind")
	tagProp         = prop("string", "Hardware tag ID from the recording")
)

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "ping",
			Description: "Check connectivity and show the authenticated team",
			InputSchema: objectSchema(map[string]any{}),
		},

		// Edge device
		{
			Name:        "list_edge_sessions",
			Description: "List the recordings stored on the Edge device",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "setup_edge_session",
			Description: "Import an Edge recording into a new workspace. Match periods are seeded from the sport and recorded tags are matched against the roster",
			InputSchema: objectSchema(map[string]any{
				"session_id":        prop("string", "Edge session ID"),
				"event_id":          prop("string", "Existing event to attach (omit to create one when the report is generated)"),
				"kind":              enumProp("Event kind", "training", "match"),
				"sport":             enumProp("Sport, selects the match periods", "football", "hockey"),
				"opponent":          prop("string", "Opponent name (matches)"),
				"home_score":        prop("string", "Home score (matches)"),
				"away_score":        prop("string", "Away score (matches)"),
				"training_category": prop("string", "Training category (trainings)"),
				"gender":            prop("string", "Team gender"),
				"description":       prop("string", "Free-text description"),
			}, "session_id"),
		},
		{
			Name:        "list_workspaces",
			Description: "List workspaces of the team, most recently edited first",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "get_workspace",
			Description: "Get the workspace view: full session, periods and drills with edit bounds, tag inclusion",
			InputSchema: objectSchema(map[string]any{"workspace_id": workspaceIDProp}, "workspace_id"),
		},
		{
			Name:        "set_event_details",
			Description: "Edit event details of the workspace. Omitted fields are unchanged",
			InputSchema: objectSchema(map[string]any{
				"workspace_id":      workspaceIDProp,
				"opponent":          prop("string", "Opponent name"),
				"home_score":        prop("string", "Home score"),
				"away_score":        prop("string", "Away score"),
				"training_category": prop("string", "Training category"),
				"gender":            prop("string", "Team gender"),
				"description":       prop("string", "Free-text description"),
			}, "workspace_id"),
		},

		// Segments
		{
			Name:        "trim_full_session",
			Description: "Set the full-session bounds (epoch ms) while it is unlocked. Bounds must stay within the recording and cover every marked segment",
			InputSchema: objectSchema(map[string]any{
				"workspace_id":    workspaceIDProp,
				"start_timestamp": prop("integer", "New start, epoch milliseconds"),
				"end_timestamp":   prop("integer", "New end, epoch milliseconds"),
			}, "workspace_id", "start_timestamp", "end_timestamp"),
		},
		{
			Name:        "lock_full_session",
			Description: "Lock (default) or unlock the full session. Locking enables drill marking and pins the bounds",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"locked":       prop("boolean", "false to unlock"),
			}, "workspace_id"),
		},
		{
			Name:        "mark_drill",
			Description: "Append a drill starting where the last segment ends. Requires a locked full session with at least one minute left",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"name":         prop("string", "Semantic name (default drill<N>)"),
				"label":        prop("string", "Display label"),
			}, "workspace_id"),
		},
		{
			Name:        "add_period",
			Description: "Append a deletable period such as overtime",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"name":         prop("string", "Period name"),
				"label":        prop("string", "Display label"),
			}, "workspace_id", "name"),
		},
		{
			Name:        "update_segment",
			Description: "Move the start and/or end (epoch ms) of an unlocked period or drill within its bounds",
			InputSchema: objectSchema(map[string]any{
				"workspace_id":    workspaceIDProp,
				"kind":            segmentKindProp,
				"segment_id":      segmentIDProp,
				"start_timestamp": prop("integer", "New start, epoch milliseconds"),
				"end_timestamp":   prop("integer", "New end, epoch milliseconds"),
			}, "workspace_id", "kind", "segment_id"),
		},
		{
			Name:        "lock_segment",
			Description: "Confirm (default) or reopen a period or drill. Only locked segments are reported",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"kind":         segmentKindProp,
				"segment_id":   segmentIDProp,
				"locked":       prop("boolean", "false to reopen"),
			}, "workspace_id", "kind", "segment_id"),
		},
		{
			Name:        "delete_segment",
			Description: "Delete a drill or an added period",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"kind":         segmentKindProp,
				"segment_id":   segmentIDProp,
			}, "workspace_id", "kind", "segment_id"),
		},
		{
			Name:        "activity_chart",
			Description: "Get the team activity series re-timed to the current full session, with clock gridlines",
			InputSchema: objectSchema(map[string]any{"workspace_id": workspaceIDProp}, "workspace_id"),
		},

		// Players
		{
			Name:        "list_roster",
			Description: "List roster players of the team",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "add_player",
			Description: "Add or update a roster player",
			InputSchema: objectSchema(map[string]any{
				"id":   prop("string", "Player ID (generated when omitted)"),
				"name": prop("string", "Player name"),
				"tag":  prop("string", "Hardware tag stored on the player profile"),
			}, "name"),
		},
		{
			Name:        "player_choices",
			Description: "List roster players that can be assigned to a recorded tag",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"tag":          tagProp,
			}, "workspace_id", "tag"),
		},
		{
			Name:        "assign_player",
			Description: "Assign a roster player to a recorded tag and include it in the report",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"tag":          tagProp,
				"player_id":    prop("string", "Roster player ID"),
			}, "workspace_id", "tag", "player_id"),
		},
		{
			Name:        "set_player_included",
			Description: "Include or exclude an assigned tag from the report",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"tag":          tagProp,
				"included":     prop("boolean", "Whether the tag is reported"),
			}, "workspace_id", "tag", "included"),
		},

		// Reports
		{
			Name:        "generate_report",
			Description: "Validate the workspace and start report generation on the Edge device in the background",
			InputSchema: objectSchema(map[string]any{"workspace_id": workspaceIDProp}, "workspace_id"),
		},
		{
			Name:        "report_status",
			Description: "Get the state of the latest report attempt, optionally waiting for it to finish",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"wait_seconds": prop("integer", "Wait up to this many seconds (max 120) for the attempt to finish"),
			}, "workspace_id"),
		},
		{
			Name:        "cancel_report",
			Description: "Cancel the running report attempt. An event created for it is deleted again",
			InputSchema: objectSchema(map[string]any{"workspace_id": workspaceIDProp}, "workspace_id"),
		},
		{
			Name:        "workspace_history",
			Description: "List the edit and report history of a workspace, newest first",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProp,
				"limit":        prop("integer", "Maximum number of entries"),
			}, "workspace_id"),
		},
	}
}

// registerTools adds every catalog tool to the server, dispatching calls through the handler.
func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, getTeamID(ctx), name, args)
			if err != nil {
				apiErr := MapError(err)
				if apiErr == nil {
					logger.Error("tool failed", "tool", name, "team_id", getTeamID(ctx), "error", err)
					apiErr = &APIError{Code: "INTERNAL_ERROR", Message: err.Error()}
				}
				return errorResult(apiErr), nil
			}
			return textResult(result)
		})
	}
}

func textResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(apiErr *APIError) *sdkmcp.CallToolResult {
	data, err := json.Marshal(apiErr)
	if err != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}
