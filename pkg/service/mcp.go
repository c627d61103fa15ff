package service

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
)

const MCPEndpointPath = "/mcp"

/*
MCPBroker hosts an MCP server over streamable HTTP. The server is
stateless, so any number of agents can share it.
*/
type MCPBroker struct {
	name   string
	mcp    *server.MCPServer
	stream *server.StreamableHTTPServer
}

func NewMCPBroker(name string, srv *server.MCPServer) *MCPBroker {
	return &MCPBroker{
		name: name,
		mcp:  srv,
		stream: server.NewStreamableHTTPServer(
			srv,
			server.WithEndpointPath(MCPEndpointPath),
			server.WithStateLess(true),
		),
	}
}

func (broker *MCPBroker) Server() *server.MCPServer {
	return broker.mcp
}

// Handler exposes the streamable HTTP endpoint for embedding in tests.
func (broker *MCPBroker) Handler() http.Handler {
	return broker.stream
}

func (broker *MCPBroker) Start(addr string) error {
	log.Info("MCP server listening", "server", broker.name, "addr", addr, "path", MCPEndpointPath)

	if err := broker.stream.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (broker *MCPBroker) Shutdown(ctx context.Context) error {
	return broker.stream.Shutdown(ctx)
}
