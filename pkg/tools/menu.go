package tools

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/a2a-helpdesk/pkg/menu"
)

const (
	ItemDetailsToolName  = "get_item_details"
	CompleteMenuToolName = "get_complete_menu"
)

// ItemDetailsTool serves get_item_details from a menu store.
type ItemDetailsTool struct {
	tool  mcp.Tool
	store *menu.Store
}

func NewItemDetailsTool(store *menu.Store) *ItemDetailsTool {
	return &ItemDetailsTool{
		tool: mcp.NewTool(
			ItemDetailsToolName,
			mcp.WithDescription("Returns details of a menu item given its name."),
			mcp.WithString(
				"name",
				mcp.Required(),
				mcp.Description("The exact name of the dish, as it appears on the menu."),
			),
		),
		store: store,
	}
}

func (it *ItemDetailsTool) Tool() mcp.Tool {
	return it.tool
}

func (it *ItemDetailsTool) Register(srv *server.MCPServer) {
	srv.AddTool(it.tool, it.Handle)
}

func (it *ItemDetailsTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	item, err := it.store.Get(name)

	if err != nil {
		var notFound *menu.ItemNotFoundError

		if stderrors.As(err, &notFound) {
			log.Info("unknown menu item requested", "name", name)
		}

		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(item)
}

// CompleteMenuTool serves get_complete_menu from a menu store.
type CompleteMenuTool struct {
	tool  mcp.Tool
	store *menu.Store
}

func NewCompleteMenuTool(store *menu.Store) *CompleteMenuTool {
	return &CompleteMenuTool{
		tool: mcp.NewTool(
			CompleteMenuToolName,
			mcp.WithDescription("Return complete menu."),
		),
		store: store,
	}
}

func (ct *CompleteMenuTool) Tool() mcp.Tool {
	return ct.tool
}

func (ct *CompleteMenuTool) Register(srv *server.MCPServer) {
	srv.AddTool(ct.tool, ct.Handle)
}

func (ct *CompleteMenuTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	return jsonResult(ct.store.All())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)

	if err != nil {
		return mcp.NewToolResultError("failed to marshal result to JSON: " + err.Error()), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
