package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/a2a-helpdesk/pkg/menu"
	"github.com/theapemachine/a2a-helpdesk/pkg/tools"
)

func TestMCPBroker(t *testing.T) {
	Convey("Given the restaurant MCP server behind a broker", t, func() {
		store, err := menu.New(menu.DefaultItems())
		So(err, ShouldBeNil)

		mcpServer := server.NewMCPServer("restaurant-mcp", "1.0.0", server.WithToolCapabilities(true))
		tools.NewItemDetailsTool(store).Register(mcpServer)
		tools.NewCompleteMenuTool(store).Register(mcpServer)

		broker := NewMCPBroker("restaurant", mcpServer)
		So(broker.Server(), ShouldEqual, mcpServer)

		mux := http.NewServeMux()
		mux.Handle(MCPEndpointPath, broker.Handler())

		httpSrv := httptest.NewServer(mux)
		defer httpSrv.Close()

		toolset := tools.NewToolset(httpSrv.URL + MCPEndpointPath)
		defer toolset.Close()

		ctx := context.Background()

		Convey("A toolset lists the menu tools over streamable HTTP", func() {
			definitions, err := toolset.Tools(ctx)
			So(err, ShouldBeNil)
			So(definitions, ShouldHaveLength, 2)
		})

		Convey("A toolset can look up a dish", func() {
			text, isError, err := toolset.Call(ctx, tools.ItemDetailsToolName, `{"name": "Mango Smoothie"}`)
			So(err, ShouldBeNil)
			So(isError, ShouldBeFalse)
			So(text, ShouldContainSubstring, "4.5")
		})
	})
}
