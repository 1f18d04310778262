package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/lexsnip/lexsnip-mcp/internal/embedder"
	"github.com/lexsnip/lexsnip-mcp/internal/searcher"
	"github.com/lexsnip/lexsnip-mcp/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "lexsnip-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"

	// BackendFile stores snippets in a single JSON file
	BackendFile = "file"
	// BackendPostgres stores snippets in PostgreSQL with pgvector
	BackendPostgres = "postgres"

	// EnvBackend selects the storage backend
	EnvBackend = "LEXSNIP_BACKEND"
	// EnvDataPath overrides the JSON file location for the file backend
	EnvDataPath = "LEXSNIP_DATA_PATH"
	// EnvDatabaseURL is the PostgreSQL connection string
	EnvDatabaseURL = "DATABASE_URL"
)

// Server wraps the MCP server with application dependencies. The searcher
// is nil on the file backend; semantic tools then report
// unsupported_operation.
type Server struct {
	mcp      *server.MCPServer
	store    store.Store
	searcher *searcher.Searcher
	emb      embedder.Embedder
}

// NewServer creates a new MCP server instance. The backend comes from
// LEXSNIP_BACKEND; when unset, DATABASE_URL implies postgres and its
// absence implies the file backend.
func NewServer(ctx context.Context) (*Server, error) {
	backend := os.Getenv(EnvBackend)
	if backend == "" {
		if os.Getenv(EnvDatabaseURL) != "" {
			backend = BackendPostgres
		} else {
			backend = BackendFile
		}
	}

	s := &Server{
		mcp: server.NewMCPServer(ServerName, ServerVersion),
	}

	switch backend {
	case BackendFile:
		path := os.Getenv(EnvDataPath)
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			path = filepath.Join(home, ".lexsnip", "legal_snippets.json")
		}
		fs, err := store.NewFileStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		s.store = fs
		log.Printf("Using file backend at %s", path)

	case BackendPostgres:
		databaseURL := os.Getenv(EnvDatabaseURL)
		if databaseURL == "" {
			return nil, fmt.Errorf("%s is required for the postgres backend", EnvDatabaseURL)
		}
		emb, err := embedder.NewFromEnv()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		ps, err := store.NewPostgresStore(ctx, databaseURL, emb)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		s.store = ps
		s.emb = emb
		s.searcher = searcher.NewSearcher(ps, emb)
		log.Printf("Using postgres backend, embedding provider %s (%s)", emb.Provider(), emb.Model())

	default:
		return nil, fmt.Errorf("unknown backend %q (expected %q or %q)", backend, BackendFile, BackendPostgres)
	}

	s.registerTools()
	s.registerResources()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer s.close()
	return server.ServeStdio(s.mcp)
}

func (s *Server) close() {
	_ = s.store.Close()
	if s.emb != nil {
		_ = s.emb.Close()
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(createSnippetTool(), s.handleCreateSnippet)
	s.mcp.AddTool(searchSnippetsTool(), s.handleSearchSnippets)
	s.mcp.AddTool(getSnippetTool(), s.handleGetSnippet)
	s.mcp.AddTool(updateSnippetTool(), s.handleUpdateSnippet)
	s.mcp.AddTool(deleteSnippetTool(), s.handleDeleteSnippet)
	s.mcp.AddTool(listTagsTool(), s.handleListTags)
	s.mcp.AddTool(exportSnippetsTool(), s.handleExportSnippets)
	s.mcp.AddTool(semanticSearchTool(), s.handleSemanticSearch)
	s.mcp.AddTool(findSimilarSnippetsTool(), s.handleFindSimilarSnippets)
}
