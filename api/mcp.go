package api

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Rostezkiy/spectre/miner"
	"github.com/Rostezkiy/spectre/query"
	"github.com/Rostezkiy/spectre/store"
)

// ResourcesOutput lists the registered resources.
type ResourcesOutput struct {
	Resources []store.Resource `json:"resources"`
}

// QueryInput is the input schema for the spectre_query tool.
type QueryInput struct {
	Resource string            `json:"resource" jsonschema:"the registered resource name to query"`
	Filters  map[string]string `json:"filters,omitempty" jsonschema:"field or field__op filters on the record body"`
	Sort     string            `json:"sort,omitempty" jsonschema:"record field to sort by"`
	Order    string            `json:"order,omitempty" jsonschema:"asc or desc"`
	Limit    int               `json:"limit,omitempty" jsonschema:"max records to return (default 100)"`
	Offset   int               `json:"offset,omitempty" jsonschema:"records to skip"`
}

// QueryOutput mirrors the REST list envelope.
type QueryOutput struct {
	Resource string         `json:"resource"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
	Data     []query.Record `json:"data"`
}

// AnalyzeInput is the input schema for the spectre_analyze tool.
type AnalyzeInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max distinct URLs to mine (default 1000)"`
}

// AnalyzeOutput carries the suggested resource definitions.
type AnalyzeOutput struct {
	Resources []store.Resource `json:"resources"`
}

// RegisterMCP registers the spectre tools on an MCP server. The analyze
// tool only suggests definitions; persisting them stays an operator
// decision.
func (s *Server) RegisterMCP(srv *mcp.Server, st *store.Store) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "spectre_resources",
		Description: "List the registered resources with their URL patterns and primary keys.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ResourcesOutput, error) {
		return nil, ResourcesOutput{Resources: s.registry.List()}, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "spectre_query",
		Description: "Query captured records of a resource with filters, sorting and pagination.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
		res, err := s.registry.Get(input.Resource)
		if err != nil {
			return nil, QueryOutput{}, err
		}
		result, err := s.translator.List(ctx, res, query.ListOptions{
			Filters: input.Filters,
			Sort:    input.Sort,
			Order:   input.Order,
			Limit:   input.Limit,
			Offset:  input.Offset,
		})
		if err != nil {
			return nil, QueryOutput{}, err
		}
		return nil, QueryOutput{
			Resource: res.Name,
			Total:    result.Total,
			Limit:    result.Limit,
			Offset:   result.Offset,
			Data:     result.Records,
		}, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "spectre_analyze",
		Description: "Mine captured URLs into suggested resource definitions without persisting them.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
		analysis, err := miner.Analyze(ctx, st, input.Limit, s.logger)
		if err != nil {
			return nil, AnalyzeOutput{}, err
		}
		return nil, AnalyzeOutput{Resources: analysis.Resources}, nil
	})
}
