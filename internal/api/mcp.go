package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the outline tools on an MCP server. st may be nil,
// in which case outline_get is not offered.
func RegisterMCP(srv *mcp.Server, outliner *pipeline.Outliner, st *store.Store, maxBytes int64) {
	registerExtractTool(srv, outliner, maxBytes)
	registerFormatsTool(srv)
	if st != nil {
		registerGetTool(srv, st)
	}
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// addJSONTool adapts a typed handler to an MCP tool that answers with JSON
// text. Handler errors become tool errors, not protocol errors.
func addJSONTool[Req any](srv *mcp.Server, tool *mcp.Tool, handle func(context.Context, Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in Req
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		out, err := handle(ctx, in)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}

		data, err := json.Marshal(out)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

type extractReq struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

func registerExtractTool(srv *mcp.Server, outliner *pipeline.Outliner, maxBytes int64) {
	tool := &mcp.Tool{
		Name:        "outline_extract",
		Description: "Extract the title and heading outline (H1, H2, ...) with page numbers from a document file.",
		InputSchema: inputSchema(map[string]any{
			"path":   map[string]any{"type": "string", "description": "File path to outline"},
			"format": map[string]any{"type": "string", "enum": []string{"flat", "tree"}, "description": "flat (default) or nested tree"},
		}, []string{"path"}),
	}

	addJSONTool(srv, tool, func(ctx context.Context, r extractReq) (any, error) {
		if r.Path == "" {
			return nil, errors.New("path is required")
		}
		if !parser.IsSupportedExtension(r.Path) {
			return nil, fmt.Errorf("unsupported file type: %s", r.Path)
		}
		data, err := readLimited(r.Path, maxBytes)
		if err != nil {
			return nil, err
		}
		doc, err := outliner.Outline(ctx, data, r.Path, nil)
		if err != nil {
			return nil, err
		}
		return outlineView(doc.Outline, r.Format), nil
	})
}

func registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "outline_formats",
		Description: "List the file extensions outline_extract accepts.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	addJSONTool(srv, tool, func(context.Context, struct{}) (any, error) {
		return map[string]any{"formats": parser.Extensions()}, nil
	})
}

type getReq struct {
	DocID  string `json:"doc_id"`
	Format string `json:"format"`
}

func registerGetTool(srv *mcp.Server, st *store.Store) {
	tool := &mcp.Tool{
		Name:        "outline_get",
		Description: "Fetch a stored outline by document ID.",
		InputSchema: inputSchema(map[string]any{
			"doc_id": map[string]any{"type": "string", "description": "Document ID returned by an upload"},
			"format": map[string]any{"type": "string", "enum": []string{"flat", "tree"}},
		}, []string{"doc_id"}),
	}

	addJSONTool(srv, tool, func(ctx context.Context, r getReq) (any, error) {
		rec, err := st.Get(ctx, r.DocID)
		if err != nil {
			return nil, err
		}
		return outlineView(rec.Outline, r.Format), nil
	})
}

func outlineView(o doctree.Outline, format string) any {
	if format == "tree" {
		tree := doctree.Nest(o.Entries)
		if tree == nil {
			tree = []*doctree.Node{}
		}
		return map[string]any{"title": o.Title, "tree": tree}
	}
	return o
}

func readLimited(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if maxBytes <= 0 {
		return io.ReadAll(f)
	}
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%s exceeds max size (%d bytes)", path, maxBytes)
	}
	return data, nil
}
