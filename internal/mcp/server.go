package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/markuplens/markuplens/internal/domain"
	"github.com/markuplens/markuplens/internal/service"
)

// AuditWriter records tool invocations. A nil writer disables auditing.
type AuditWriter interface {
	WriteAudit(action, resource, resourceID, details, ip, userAgent string) error
}

// Server implements the Model Context Protocol (MCP) server.
// It exposes tools for external AI agents to run scans and read insights.
type Server struct {
	scans    *service.ScanService
	insights *service.InsightService
	audit    AuditWriter
	port     string
}

// NewServer creates a new MCP server.
func NewServer(scans *service.ScanService, insights *service.InsightService, audit AuditWriter, port string) *Server {
	return &Server{
		scans:    scans,
		insights: insights,
		audit:    audit,
		port:     port,
	}
}

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Start begins the MCP server on the configured port.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleRPC)
	mux.HandleFunc("/mcp/sse", s.handleSSE)

	slog.Info("MCP server starting", "port", s.port)
	return http.ListenAndServe(":"+s.port, mux)
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, -32700, "parse error")
		return
	}

	var result interface{}
	var err error

	switch req.Method {
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, err = s.callTool(r.Context(), req.Params)
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]string{
				"name":    "markuplens",
				"version": "1.0.0",
			},
			"capabilities": map[string]interface{}{
				"tools": map[string]bool{"listChanged": false},
			},
		}
	default:
		writeError(w, req.ID, -32601, "method not found")
		return
	}

	if err != nil {
		writeError(w, req.ID, -32603, err.Error())
		return
	}

	writeResult(w, req.ID, result)
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Send initial endpoint message
	fmt.Fprintf(w, "event: endpoint\ndata: /mcp\n\n")
	w.(http.Flusher).Flush()

	// Keep connection alive
	<-r.Context().Done()
}

func (s *Server) listTools() map[string]interface{} {
	tools := []Tool{
		{
			Name:        "scan_user",
			Description: "Scan a user's public repositories and analyze their HTML quality. Blocks until the scan finishes and returns the new session.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"username": {"type": "string", "description": "Account whose repositories to scan"}
				},
				"required": ["username"]
			}`),
		},
		{
			Name:        "portfolio_insights",
			Description: "Get aggregated HTML quality insights for a user's latest analysis session, including scores, trends, and recommendations",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"username": {"type": "string", "description": "Account to report on"}
				},
				"required": ["username"]
			}`),
		},
		{
			Name:        "recent_sessions",
			Description: "List a user's recent analysis sessions, newest first, with per-repository and per-file records",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"username": {"type": "string", "description": "Account to list sessions for"},
					"limit": {"type": "integer", "description": "Maximum sessions to return (default 10)"}
				},
				"required": ["username"]
			}`),
		},
	}
	return map[string]interface{}{"tools": tools}
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.WriteAudit(domain.AuditActionMCPCall, "mcp", req.Name, string(req.Arguments), "", ""); err != nil {
			slog.Error("failed to write audit log", "error", err)
		}
	}

	switch req.Name {
	case "scan_user":
		var args struct {
			Username string `json:"username"`
		}
		json.Unmarshal(req.Arguments, &args)

		session, err := s.scans.ScanUser(ctx, args.Username, nil)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": fmt.Sprintf(
					"Scan complete for %s: %d repositories, %d HTML files analyzed (session %s)",
					session.Username, session.TotalRepositories, session.TotalHTMLFiles, session.ID,
				)},
			},
		}, nil

	case "portfolio_insights":
		var args struct {
			Username string `json:"username"`
		}
		json.Unmarshal(req.Arguments, &args)

		insights, err := s.insights.Portfolio(ctx, args.Username)
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(insights, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode insights: %w", err)
		}
		return map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": string(data)},
			},
		}, nil

	case "recent_sessions":
		var args struct {
			Username string `json:"username"`
			Limit    int    `json:"limit"`
		}
		json.Unmarshal(req.Arguments, &args)

		sessions, err := s.insights.Sessions(ctx, args.Username, args.Limit)
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode sessions: %w", err)
		}
		return map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": string(data)},
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", req.Name)
	}
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	resp := JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
