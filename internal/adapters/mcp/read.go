package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"deckvault/internal/application/commands"
	"deckvault/internal/domain"
)

// RegisterReadTools adds all read-only project tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, deps *commands.Deps) {
	s.AddTool(listProjectsTool(), listProjectsHandler(deps))
	s.AddTool(listPagesTool(), listPagesHandler(deps))
	s.AddTool(rebuildIndexTool(), rebuildIndexHandler(deps))
	s.AddTool(listAssetsTool(), listAssetsHandler(deps))
	s.AddTool(scanOrphansTool(), scanOrphansHandler(deps))
	s.AddTool(pendingSyncTool(), pendingSyncHandler(deps))
}

// --- list_projects ---

func listProjectsTool() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects under the root directory."),
	)
}

func listProjectsHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewListProjectsCommand(deps).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(result.Projects) == 0 {
			return mcp.NewToolResultText("No projects."), nil
		}
		return mcp.NewToolResultText(strings.Join(result.Projects, "\n")), nil
	}
}

// --- list_pages ---

func listPagesTool() mcp.Tool {
	return mcp.NewTool("list_pages",
		mcp.WithDescription("List a project's pages in display order with their stable page IDs."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
	)
}

func listPagesHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID := req.GetString("project", "")
		if projectID == "" {
			return toolError(fmt.Errorf("project is required"))
		}

		project, err := deps.Repo.Load(projectID)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		for i, p := range project.Pages {
			title := firstLine(p.Body)
			fmt.Fprintf(&sb, "%d  %s  %s\n", i+1, p.ID, title)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- rebuild_index ---

func rebuildIndexTool() mcp.Tool {
	return mcp.NewTool("rebuild_index",
		mcp.WithDescription("Rebuild the project's reference index from its pages and report which pages reference each asset, plus dangling links."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
	)
}

func rebuildIndexHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID := req.GetString("project", "")
		result, err := commands.NewRebuildIndexCommand(deps, projectID).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, kind := range domain.Kinds {
			for _, key := range result.Index.Keys(kind) {
				refs := result.Index.Refs(kind, key)
				fmt.Fprintf(&sb, "%s/%s: %d reference(s)\n", kind, key, len(refs.Pages()))
			}
		}
		for _, d := range result.Index.Dangling {
			fmt.Fprintf(&sb, "dangling: %q on page %s (%s)\n", d.Target, d.PageID, d.Reason)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- list_assets ---

func listAssetsTool() mcp.Tool {
	return mcp.NewTool("list_assets",
		mcp.WithDescription("List stored asset keys of a kind across both store tiers."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
		mcp.WithString("kind",
			mcp.Description("Asset kind: resources or attachments"),
			mcp.Required(),
		),
	)
}

func listAssetsHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewListAssetsCommand(deps,
			req.GetString("project", ""), req.GetString("kind", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		for _, k := range result.Listing.Keys {
			fmt.Fprintf(&sb, "%s  local=%v remote=%v\n", k, result.Listing.Local[k], result.Listing.Remote[k])
		}
		if result.Listing.Warning != "" {
			fmt.Fprintf(&sb, "warning: %s\n", result.Listing.Warning)
		}
		if sb.Len() == 0 {
			return mcp.NewToolResultText("No assets."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- scan_orphans ---

func scanOrphansTool() mcp.Tool {
	return mcp.NewTool("scan_orphans",
		mcp.WithDescription("List stored assets no page references. Orphans are reported, never deleted."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
	)
}

func scanOrphansHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewScanOrphansCommand(deps, req.GetString("project", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, o := range result.Orphans {
			fmt.Fprintf(&sb, "%s/%s  local=%v remote=%v\n", o.Kind, o.Key, o.Local, o.Remote)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(&sb, "warning: %s\n", w)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- pending_sync ---

func pendingSyncTool() mcp.Tool {
	return mcp.NewTool("pending_sync",
		mcp.WithDescription("List assets out of sync: an unconfirmed write or delete, or local and remote tiers disagreeing on presence."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
	)
}

func pendingSyncHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewPendingSyncCommand(deps, req.GetString("project", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, rec := range result.Records {
			fmt.Fprintf(&sb, "%s/%s  local=%v remote=%v pending=%v\n", rec.Kind, rec.Key, rec.LocalPresent, rec.RemotePresent, rec.Pending)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func firstLine(s string) string {
	line := strings.SplitN(strings.TrimSpace(s), "\n", 2)[0]
	if len(line) > 60 {
		line = line[:60]
	}
	return line
}
