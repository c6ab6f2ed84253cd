package registry

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ExportToolFilter hides tools that write files unless exports are enabled
// (FPA_ENABLE_EXPORTS=true).
type ExportToolFilter struct {
	allowExports bool
}

// NewExportToolFilter constructs a filter for the configured export setting.
func NewExportToolFilter(allowExports bool) *ExportToolFilter {
	return &ExportToolFilter{allowExports: allowExports}
}

// FilterTools drops export_ tools from discovery when exports are disabled.
func (f *ExportToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if f.allowExports {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if strings.HasPrefix(strings.ToLower(t.Name), "export_") {
			continue
		}
		out = append(out, t)
	}
	return out
}
