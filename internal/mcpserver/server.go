// Package mcpserver exposes the query surface of a loaded dataset as Model
// Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/appseeds/api"
	"github.com/agentic-research/appseeds/internal/dataset"
)

// Version is reported to clients during initialization.
var Version = "dev"

// Server wires dataset queries to MCP tool handlers.
type Server struct {
	d   *dataset.Dataset
	mcp *server.MCPServer
}

// New registers the dataset tools on a fresh MCP server.
func New(d *dataset.Dataset) *Server {
	s := &Server{
		d:   d,
		mcp: server.NewMCPServer("appseeds", Version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool("seed_types",
		mcp.WithDescription("List the seed types defined by the loaded dataset"),
	), s.seedTypes)

	s.mcp.AddTool(mcp.NewTool("fetch",
		mcp.WithDescription("Fetch resolved records of a seed type. Give at most one of id, label or where; none returns every record."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Seed type, e.g. people")),
		mcp.WithString("id", mcp.Description("Integer or UUID identifier")),
		mcp.WithString("label", mcp.Description("Record label, e.g. joe_smith")),
		mcp.WithObject("where", mcp.Description("Attribute predicate; reference attributes accept labels")),
	), s.fetch)

	s.mcp.AddTool(mcp.NewTool("config_value",
		mcp.WithDescription("Read a merged _config value"),
		mcp.WithString("key", mcp.Required(), mcp.Description("Config key")),
	), s.configValue)

	s.mcp.AddTool(mcp.NewTool("label_for_id",
		mcp.WithDescription("Find the label whose identifier is id"),
		mcp.WithString("type", mcp.Required(), mcp.Description("Seed type")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Integer or UUID identifier")),
	), s.labelForID)

	s.mcp.AddTool(mcp.NewTool("select",
		mcp.WithDescription("Evaluate a JSONPath expression over {type: {label: attributes}}"),
		mcp.WithString("expr", mcp.Required(), mcp.Description("JSONPath, e.g. $.people.*.first_name")),
	), s.selectPath)

	return s
}

// MCPServer returns the underlying server, for custom transports.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio serves the tools over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error { return server.ServeStdio(s.mcp) }

// recordView is the JSON shape of a record in tool results.
type recordView struct {
	Label      string         `json:"label"`
	ID         any            `json:"id"`
	UUID       string         `json:"uuid"`
	Source     string         `json:"source"`
	Attributes api.Attributes `json:"attributes"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) seedTypes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	types, err := s.d.SeedTypes()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(types)
}

func (s *Server) fetch(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seedType, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sel, err := selector(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recs, err := s.d.Fetch(seedType, sel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	views := make([]recordView, len(recs))
	for i, r := range recs {
		views[i] = recordView{Label: r.Label, ID: r.ID, UUID: r.Pair.UUID, Source: r.Source, Attributes: r.Attributes}
	}
	return jsonResult(views)
}

func selector(req mcp.CallToolRequest) (api.Selector, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	label := strings.TrimSpace(req.GetString("label", ""))
	where, hasWhere := req.GetArguments()["where"]

	n := 0
	for _, set := range []bool{id != "", label != "", hasWhere} {
		if set {
			n++
		}
	}
	if n > 1 {
		return api.Selector{}, fmt.Errorf("give at most one of id, label or where")
	}
	switch {
	case id != "":
		return api.ByID(id), nil
	case label != "":
		return api.ByLabel(label), nil
	case hasWhere:
		pred, ok := where.(map[string]any)
		if !ok {
			return api.Selector{}, fmt.Errorf("where must be an object, got %T", where)
		}
		return api.Where(pred), nil
	}
	return api.All(), nil
}

func (s *Server) configValue(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, ok, err := s.d.ConfigValue(key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no config value for %q", key)), nil
	}
	return jsonResult(v)
}

func (s *Server) labelForID(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seedType, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	label, ok := s.d.LabelForIdentifier(seedType, id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no %s record with id %s", seedType, id)), nil
	}
	return mcp.NewToolResultText(label), nil
}

func (s *Server) selectPath(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := req.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	got, err := s.d.Select(expr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(got)
}
