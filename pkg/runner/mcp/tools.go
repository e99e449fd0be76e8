package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/benchquest/pkg/protocol"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerProtocolTools(srv, svc)
	registerQuestTools(srv, svc)
	registerJournalTools(srv, svc)
}

func widgetTypeNames() []string {
	types := protocol.WidgetTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func registerProtocolTools(srv *server.MCPServer, svc *Service) {
	srv.AddTool(mcp.NewTool(
		"list_protocols",
		mcp.WithDescription("List saved research protocols with their widget counts."),
	), listProtocols(svc))

	srv.AddTool(mcp.NewTool(
		"get_protocol",
		mcp.WithDescription("Fetch a protocol with every widget and its config."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Protocol identifier."),
		),
	), getProtocol(svc))

	srv.AddTool(mcp.NewTool(
		"create_protocol",
		mcp.WithDescription("Create an empty protocol."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Protocol name."),
		),
		mcp.WithString("description",
			mcp.Description("Optional description."),
		),
	), createProtocol(svc))

	srv.AddTool(mcp.NewTool(
		"delete_protocol",
		mcp.WithDescription("Delete a protocol."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Protocol identifier."),
		),
	), deleteProtocol(svc))

	srv.AddTool(mcp.NewTool(
		"add_widget",
		mcp.WithDescription("Append a widget step to a protocol."),
		mcp.WithString("protocol_id",
			mcp.Required(),
			mcp.Description("Protocol that receives the widget."),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Widget type."),
			mcp.Enum(widgetTypeNames()...),
		),
		mcp.WithString("title",
			mcp.Description("Optional title; defaults to the type's title."),
		),
		mcp.WithString("config",
			mcp.Description(`Optional JSON config for the type, e.g. {"duration":600} for a timer.`),
		),
	), addWidget(svc))

	srv.AddTool(mcp.NewTool(
		"remove_widget",
		mcp.WithDescription("Remove a widget step from a protocol."),
		mcp.WithString("protocol_id",
			mcp.Required(),
			mcp.Description("Protocol identifier."),
		),
		mcp.WithString("widget_id",
			mcp.Required(),
			mcp.Description("Widget identifier."),
		),
	), removeWidget(svc))
}

func registerQuestTools(srv *server.MCPServer, svc *Service) {
	srv.AddTool(mcp.NewTool(
		"list_quests",
		mcp.WithDescription("List quests with progress and rewards."),
		mcp.WithBoolean("all",
			mcp.Description("Include completed quests."),
		),
	), listQuests(svc))

	srv.AddTool(mcp.NewTool(
		"claim_quest",
		mcp.WithDescription("Complete a quest and collect its reward. Claiming twice awards once."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Quest identifier."),
		),
	), claimQuest(svc))

	srv.AddTool(mcp.NewTool(
		"companion_status",
		mcp.WithDescription("Show the lab companion with the player's score and level."),
	), companionStatus(svc))

	srv.AddTool(mcp.NewTool(
		"interact_companion",
		mcp.WithDescription("Pet the lab companion, restoring some energy."),
	), interactCompanion(svc))
}

func registerJournalTools(srv *server.MCPServer, svc *Service) {
	srv.AddTool(mcp.NewTool(
		"add_journal_log",
		mcp.WithDescription("Append a line to today's research journal."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to log."),
		),
	), addJournalLog(svc))

	srv.AddTool(mcp.NewTool(
		"export_journal_day",
		mcp.WithDescription("Render one journal day as text."),
		mcp.WithString("date",
			mcp.Description("Day as YYYY-MM-DD; defaults to today."),
		),
	), exportJournalDay(svc))

	srv.AddTool(mcp.NewTool(
		"activity_heatmap",
		mcp.WithDescription("Daily activity levels 0-4 derived from the journal."),
		mcp.WithNumber("year",
			mcp.Description("Year; defaults to the current year."),
		),
		mcp.WithNumber("month",
			mcp.Description("Month 1-12; omit for the whole year."),
		),
	), activityHeatmap(svc))
}

func listProtocols(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := svc.ListProtocols()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"protocols": list,
			"count":     len(list),
		})
	}
}

func getProtocol(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		p, err := svc.GetProtocol(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(p)
	}
}

func createProtocol(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		p, err := svc.CreateProtocol(name, request.GetString("description", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(p)
	}
}

func deleteProtocol(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteProtocol(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted protocol %s", id)), nil
	}
}

func addWidget(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ProtocolID string `json:"protocol_id"`
			Type       string `json:"type"`
			Title      string `json:"title"`
			Config     string `json:"config"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.ProtocolID == "" || args.Type == "" {
			return mcp.NewToolResultError("protocol_id and type are required"), nil
		}
		var raw json.RawMessage
		if args.Config != "" {
			if !json.Valid([]byte(args.Config)) {
				return mcp.NewToolResultError("config must be a JSON object"), nil
			}
			raw = json.RawMessage(args.Config)
		}
		w, err := svc.AddWidget(args.ProtocolID, args.Type, args.Title, raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(w)
	}
}

func removeWidget(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		protocolID, err := request.RequireString("protocol_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		widgetID, err := request.RequireString("widget_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		p, err := svc.RemoveWidget(protocolID, widgetID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(p)
	}
}

func listQuests(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := svc.ListQuests(request.GetBool("all", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"quests": list,
			"count":  len(list),
		})
	}
}

func claimQuest(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := svc.ClaimQuest(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	}
}

func companionStatus(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := svc.CompanionStatus()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(st)
	}
}

func interactCompanion(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := svc.InteractCompanion()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(st)
	}
}

func addJournalLog(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		e, err := svc.AddJournalLog(text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(e)
	}
}

func exportJournalDay(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := svc.ExportJournalDay(request.GetString("date", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func activityHeatmap(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cals, err := svc.ActivityHeatmap(request.GetInt("year", 0), request.GetInt("month", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"months": cals,
		})
	}
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
