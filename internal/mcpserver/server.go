// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes recvault tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/models"
	"github.com/starford/recvault/internal/vault"
)

// RecordsURI is the resource holding the whole vault as JSON.
const RecordsURI = "recvault://records"

// Server wraps the MCP server with recvault tools.
type Server struct {
	mcp *server.MCPServer
	svc *vault.Service
}

// New creates a new MCP server with all recvault tools registered.
func New(svc *vault.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"recvault",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_record",
		mcp.WithDescription("Add a name/value record to the vault."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Record name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Record value")),
	), s.addRecord)

	s.mcp.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List all records in insertion order."),
	), s.listRecords)

	s.mcp.AddTool(mcp.NewTool("update_record",
		mcp.WithDescription("Replace the name and value of an existing record."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value")),
	), s.updateRecord)

	s.mcp.AddTool(mcp.NewTool("delete_record",
		mcp.WithDescription("Delete a record by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
	), s.deleteRecord)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Case-insensitive substring search on record id and name."),
		mcp.WithString("query", mcp.Description("Search term (empty matches all)")),
	), s.searchRecords)

	s.mcp.AddTool(mcp.NewTool("sort_records",
		mcp.WithDescription("List records sorted by name or id."),
		mcp.WithString("field", mcp.Enum("id", "name"), mcp.Description("Sort field (default id)")),
		mcp.WithString("order", mcp.Enum("asc", "desc"), mcp.Description("Sort order (default asc)")),
	), s.sortRecords)

	s.mcp.AddTool(mcp.NewTool("export_records",
		mcp.WithDescription("Write the plain-text export report and return its path."),
	), s.exportRecords)

	s.mcp.AddTool(mcp.NewTool("vault_stats",
		mcp.WithDescription("Return vault statistics."),
	), s.vaultStats)

	s.mcp.AddResource(
		mcp.NewResource(RecordsURI, "Vault records",
			mcp.WithResourceDescription("All records in the vault as a JSON array."),
			mcp.WithMIMEType("application/json"),
		),
		s.readRecordsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("record not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func recordInput(req mcp.CallToolRequest) (models.Input, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return models.Input{}, err
	}
	value, err := req.RequireString("value")
	if err != nil {
		return models.Input{}, err
	}
	return models.Input{Name: name, Value: value}, nil
}

func (s *Server) addRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := recordInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Add(ctx, in)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(rec)
}

func (s *Server) listRecords(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.svc.List(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("no records"), nil
	}
	return jsonResult(records)
}

func (s *Server) updateRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := recordInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Update(ctx, models.ParseID(id), in)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(rec)
}

func (s *Server) deleteRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Delete(ctx, models.ParseID(id))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", rec.ID)), nil
}

func (s *Server) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.svc.Search(ctx, req.GetString("query", ""))
	if err != nil {
		return errorResult(err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no records found"), nil
	}
	return jsonResult(results)
}

func (s *Server) sortRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, order, err := vault.ParseSort(req.GetString("field", ""), req.GetString("order", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sorted, err := s.svc.Sort(ctx, field, order)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(sorted)
}

func (s *Server) exportRecords(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.svc.Export(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("exported: %s", path)), nil
}

func (s *Server) vaultStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Stats(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(st)
}

func (s *Server) readRecordsResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	records, err := s.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RecordsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
