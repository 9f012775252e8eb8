package mcp

import (
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/store"
)

// KnownTypes lists the tool types disabled_types may name.
var KnownTypes = []string{"contact"}

type toolEntry struct {
	name    string
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// tools is every tool the server can expose, in registration order.
var tools = []toolEntry{
	{"contact_create", createToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate }},
	{"contact_get", getToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet }},
	{"contact_update", updateToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate }},
	{"contact_delete", deleteToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete }},
	{"contact_bookmark", bookmarkToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleBookmark }},
	{"contact_search", searchToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch }},
	{"contact_export", exportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport }},
	{"contact_import", importToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport }},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns the entries of names that are not tools.
func ValidateDisabledTools(names []string) []string {
	return unknownNames(names, AllToolNames())
}

// ValidateDisabledTypes returns the entries of names that are not tool types.
func ValidateDisabledTypes(names []string) []string {
	return unknownNames(names, KnownTypes)
}

func unknownNames(names, valid []string) []string {
	known := make(map[string]bool, len(valid))
	for _, v := range valid {
		known[v] = true
	}
	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool returns the part of a tool name before the first
// underscore: "contact_create" is of type "contact".
func GetTypeForTool(toolName string) string {
	typ, _, found := strings.Cut(toolName, "_")
	if !found {
		return ""
	}
	return typ
}

// NewServer creates an MCP server exposing the contact tools, minus those
// named in cfg.DisabledTools or whose type is in cfg.DisabledTypes.
func NewServer(st *store.Store, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"rolo",
		version,
		server.WithToolCapabilities(true),
	)
	h := NewHandlers(st, cfg)

	registered := 0
	for _, t := range tools {
		if isDisabled(t.name, cfg) {
			log.Debug().Str("tool", t.name).Msg("tool disabled")
			continue
		}
		s.AddTool(t.def, t.handler(h))
		registered++
	}
	log.Debug().Int("tools", registered).Msg("mcp tools registered")
	return s
}

func isDisabled(name string, cfg *config.Config) bool {
	if cfg == nil {
		return false
	}
	return slices.Contains(cfg.DisabledTools, name) || slices.Contains(cfg.DisabledTypes, GetTypeForTool(name))
}

// Run serves the MCP tools over stdio until stdin closes.
func Run(st *store.Store, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(st, cfg, version))
}
