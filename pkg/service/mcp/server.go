package mcp

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/tool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes the active tool set over the Model Context Protocol so
// other local agents can query the note collection. The active set is
// policy-filtered before it reaches this server, so a read-only context
// never advertises mutation tools.
type Server struct {
	executor *tool.Executor
	server   *mcp.Server
}

// NewServer creates an MCP server wrapping the tool executor
func NewServer(executor *tool.Executor, version string) *Server {
	s := &Server{
		executor: executor,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "kioku",
			Version: version,
		}, nil),
	}

	for _, spec := range executor.Registry().Active() {
		s.server.AddTool(&mcp.Tool{
			Name:        string(spec.Kind),
			Description: spec.Description,
			InputSchema: convertSchema(spec),
		}, s.handler(spec.Kind))
	}

	return s
}

// Run serves MCP over stdio until ctx is canceled
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "mcp server failed")
	}
	return nil
}

// handler adapts one tool kind to an MCP tool handler
func (s *Server) handler(kind tool.Kind) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := make(map[string]any)
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return nil, goerr.Wrap(err, "failed to parse tool arguments", goerr.V("tool", kind))
			}
		}

		results, err := s.executor.Execute(ctx, []tool.Call{{Kind: kind, Params: params}})
		if err != nil {
			return nil, err
		}

		result := results[0]
		if result.Error != "" {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: result.Error}},
			}, nil
		}

		data, err := json.Marshal(result.Result)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal tool result", goerr.V("tool", kind))
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	}
}

// convertSchema converts a tool spec to a JSON Schema for MCP
func convertSchema(spec tool.Spec) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema),
	}

	for name, ps := range spec.Params {
		schema.Properties[name] = &jsonschema.Schema{
			Type:        ps.Type,
			Description: ps.Description,
		}
		if ps.Required {
			schema.Required = append(schema.Required, name)
		}
	}
	sort.Strings(schema.Required)

	return schema
}
