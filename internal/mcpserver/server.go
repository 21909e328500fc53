// Package mcpserver exposes the docs tree to MCP clients as tools for
// listing versions and documents, reading a document and its table of
// contents.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/docs"
	"git.home.luguber.info/inful/mdxsite/internal/mdx"
	"git.home.luguber.info/inful/mdxsite/internal/version"
)

// Endpoint is the streamable HTTP path.
const Endpoint = "/mcp"

// Source is the document access the tools need.
type Source interface {
	Versions(ctx context.Context) ([]string, error)
	List(ctx context.Context, version, locale string) ([]docs.Doc, error)
	Resolve(ctx context.Context, slug, version, locale string) (*docs.Doc, error)
}

// ListDocsRequest are the list_docs arguments.
type ListDocsRequest struct {
	Version string `json:"version"`
	Locale  string `json:"locale"`
}

// GetDocRequest are the get_doc arguments.
type GetDocRequest struct {
	Slug    string `json:"slug"`
	Version string `json:"version"`
	Locale  string `json:"locale"`
	Format  string `json:"format"`
}

// GetTocRequest are the get_toc arguments.
type GetTocRequest struct {
	Slug    string `json:"slug"`
	Version string `json:"version"`
	Locale  string `json:"locale"`
}

// DocEntry is one listed document.
type DocEntry struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Locale      string `json:"locale"`
}

// DocResponse is the get_doc result.
type DocResponse struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Version     string     `json:"version"`
	Locale      string     `json:"locale"`
	Format      string     `json:"format"`
	Content     string     `json:"content,omitempty"`
	Nodes       []mdx.Node `json:"nodes,omitempty"`
	Fingerprint string     `json:"fingerprint"`
}

const (
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatNodes    = "nodes"
)

type tools struct {
	cfg    *config.Config
	source Source
}

// NewServer creates the MCP server with the docs tools registered.
func NewServer(cfg *config.Config, source Source) *server.MCPServer {
	s := server.NewMCPServer(
		"mdxsite",
		version.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	t := &tools{cfg: cfg, source: source}

	s.AddTool(mcp.NewTool("list_versions",
		mcp.WithDescription("List the available documentation versions"),
	), t.listVersions)

	s.AddTool(mcp.NewTool("list_docs",
		mcp.WithDescription("List the documents of a version in sidebar order"),
		mcp.WithString("version", mcp.Description("Version directory; defaults to the configured default version")),
		mcp.WithString("locale", mcp.Description("Locale code; defaults to the default locale")),
	), mcp.NewTypedToolHandler(t.listDocs))

	s.AddTool(mcp.NewTool("get_doc",
		mcp.WithDescription("Read one document as markdown, HTML or a component node tree"),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Document slug, e.g. 'guides/install'")),
		mcp.WithString("version", mcp.Description("Version directory; defaults to the configured default version")),
		mcp.WithString("locale", mcp.Description("Locale code; defaults to the default locale")),
		mcp.WithString("format",
			mcp.Description("Output format"),
			mcp.Enum(formatMarkdown, formatHTML, formatNodes),
		),
	), mcp.NewTypedToolHandler(t.getDoc))

	s.AddTool(mcp.NewTool("get_toc",
		mcp.WithDescription("List the h2 and h3 headings of a document"),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Document slug")),
		mcp.WithString("version", mcp.Description("Version directory; defaults to the configured default version")),
		mcp.WithString("locale", mcp.Description("Locale code; defaults to the default locale")),
	), mcp.NewTypedToolHandler(t.getToc))

	return s
}

func (t *tools) version(v string) string {
	if v == "" {
		return t.cfg.Docs.DefaultVersion
	}
	return v
}

func (t *tools) listVersions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	versions, err := t.source.Versions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list versions: %v", err)), nil
	}
	return jsonResult(map[string]any{"versions": versions, "default": t.cfg.Docs.DefaultVersion})
}

func (t *tools) listDocs(ctx context.Context, _ mcp.CallToolRequest, args ListDocsRequest) (*mcp.CallToolResult, error) {
	listed, err := t.source.List(ctx, t.version(args.Version), args.Locale)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list documents: %v", err)), nil
	}
	out := make([]DocEntry, 0, len(listed))
	for _, d := range docs.Ordered(listed) {
		out = append(out, DocEntry{Slug: d.Slug, Title: d.Title, Description: d.Meta.Description, Locale: d.Locale})
	}
	return jsonResult(out)
}

func (t *tools) getDoc(ctx context.Context, _ mcp.CallToolRequest, args GetDocRequest) (*mcp.CallToolResult, error) {
	if args.Slug == "" {
		return mcp.NewToolResultError("slug is required"), nil
	}
	format := args.Format
	if format == "" {
		format = formatMarkdown
	}
	doc, err := t.source.Resolve(ctx, args.Slug, t.version(args.Version), args.Locale)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get document: %v", err)), nil
	}

	resp := DocResponse{
		Slug:        doc.Slug,
		Title:       doc.Title,
		Version:     doc.Version,
		Locale:      doc.Locale,
		Format:      format,
		Fingerprint: doc.Fingerprint,
	}
	switch format {
	case formatMarkdown:
		md, err := htmltomarkdown.ConvertString(doc.Content)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to convert document to markdown: %v", err)), nil
		}
		resp.Content = md
	case formatHTML:
		resp.Content = doc.Content
	case formatNodes:
		resp.Nodes = doc.ContentNodes
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
	return jsonResult(resp)
}

func (t *tools) getToc(ctx context.Context, _ mcp.CallToolRequest, args GetTocRequest) (*mcp.CallToolResult, error) {
	if args.Slug == "" {
		return mcp.NewToolResultError("slug is required"), nil
	}
	doc, err := t.source.Resolve(ctx, args.Slug, t.version(args.Version), args.Locale)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get document: %v", err)), nil
	}
	return jsonResult(doc.TableOfContents())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// Serve runs s over the configured transport until ctx is done.
func Serve(ctx context.Context, cfg *config.Config, s *server.MCPServer, logger *slog.Logger) error {
	switch cfg.MCP.Transport {
	case config.MCPTransportHTTP:
		return serveHTTP(ctx, cfg.MCP.Addr, s, logger)
	default:
		return ServeStdio(ctx, s, os.Stdin, os.Stdout)
	}
}

// ServeStdio speaks MCP over the given streams.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func serveHTTP(ctx context.Context, addr string, s *server.MCPServer, logger *slog.Logger) error {
	h := server.NewStreamableHTTPServer(s, server.WithEndpointPath(Endpoint))
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("MCP server started", slog.String("addr", addr), slog.String("endpoint", Endpoint))

	select {
	case err := <-errCh:
		return fmt.Errorf("mcp http: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
