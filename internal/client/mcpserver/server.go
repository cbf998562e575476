// Package mcpserver exposes reminders as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/dmitrijs2005/geokeeper/internal/client/geofence"
	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/result"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "geokeeper-reminders"
	serverVersion = "1.0.0"
)

// Geofencer arms regions for new reminders and removes them on delete.
type Geofencer interface {
	Arm(ctx context.Context, r models.Reminder) error
	DisarmAll(ctx context.Context, ids []string) error
}

type Server struct {
	mcpServer *server.MCPServer
	repo      services.ReminderRepository
	geo       Geofencer
	log       logging.Logger
}

func NewServer(repo services.ReminderRepository, geo Geofencer, log logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{repo: repo, geo: geo, log: log.With("component", "mcp")}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List every location reminder in store order"),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_reminder",
			mcp.WithDescription("Get one reminder by id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleGetReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a reminder that fires when the device enters the given location"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("location", mcp.Required(), mcp.Description("Human-readable place name")),
			mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude in degrees")),
			mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude in degrees")),
			mcp.WithString("description", mcp.Description("Optional description")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_all_reminders",
			mcp.WithDescription("Delete every reminder and remove its geofence"),
		),
		s.handleDeleteAll,
	)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleListReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch res := s.repo.ListReminders(ctx).(type) {
	case result.Success[[]models.Reminder]:
		if len(res.Data) == 0 {
			return mcp.NewToolResultText("No reminders found."), nil
		}
		return jsonResult(res.Data)
	case result.Error[[]models.Reminder]:
		return mcp.NewToolResultError(res.Message), nil
	default:
		return mcp.NewToolResultError("unexpected result"), nil
	}
}

func (s *Server) handleGetReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	return result.Match(s.repo.GetReminder(ctx, id),
		func(r models.Reminder) *mcp.CallToolResult {
			out, _ := jsonResult(r)
			return out
		},
		func(msg string) *mcp.CallToolResult { return mcp.NewToolResultError(msg) },
	), nil
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r := models.NewReminder(
		models.OptionalString(req.GetString("title", "")),
		models.OptionalString(req.GetString("description", "")),
		models.OptionalString(req.GetString("location", "")),
		number(req, "latitude"),
		number(req, "longitude"),
	)

	if msg, failed := models.ValidationMessage(models.Validate(r)); failed {
		return mcp.NewToolResultError(msg.Text()), nil
	}

	if err := s.geo.Arm(ctx, r); err != nil {
		s.log.Warn(ctx, "geofence not armed", "id", r.ID, "error", err)
		return mcp.NewToolResultError(geofence.MessageFor(err).Text()), nil
	}

	if err := s.repo.SaveReminder(ctx, r); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", models.MsgSaveFailed.Text(), err)), nil
	}

	return jsonResult(r)
}

func (s *Server) handleDeleteAll(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var ids []string
	switch res := s.repo.ListReminders(ctx).(type) {
	case result.Success[[]models.Reminder]:
		for _, r := range res.Data {
			ids = append(ids, r.ID)
		}
	case result.Error[[]models.Reminder]:
		// without the ids their regions could not be removed
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %s", res.Message)), nil
	}

	if err := s.repo.DeleteAllReminders(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminders: %v", err)), nil
	}
	if err := s.geo.DisarmAll(ctx, ids); err != nil {
		s.log.Warn(ctx, "regions left registered", "error", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted %d reminders.", len(ids))), nil
}

// number returns the numeric argument key, or nil when absent.
func number(req mcp.CallToolRequest, key string) *float64 {
	v := req.GetFloat(key, math.NaN())
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
