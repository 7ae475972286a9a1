package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"deckvault/internal/application/commands"
)

// RegisterWriteTools adds all mutating project tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, deps *commands.Deps) {
	s.AddTool(createProjectTool(), createProjectHandler(deps))
	s.AddTool(addPageTool(), addPageHandler(deps))
	s.AddTool(updatePageTool(), updatePageHandler(deps))
	s.AddTool(removePageTool(), removePageHandler(deps))
	s.AddTool(reorderPagesTool(), reorderPagesHandler(deps))
	s.AddTool(deleteAssetTool(), deleteAssetHandler(deps))
	s.AddTool(reconcileTool(), reconcileHandler(deps))
	s.AddTool(transferPageTool(), transferPageHandler(deps))
}

// --- create_project ---

func createProjectTool() mcp.Tool {
	return mcp.NewTool("create_project",
		mcp.WithDescription("Create a project with an empty descriptor and asset directories."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
	)
}

func createProjectHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewCreateProjectCommand(deps, req.GetString("project", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- add_page ---

func addPageTool() mcp.Tool {
	return mcp.NewTool("add_page",
		mcp.WithDescription("Append a page to a project. The page gets a stable ID that survives reorders and transfers."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
		mcp.WithString("body",
			mcp.Description("Page body markdown"),
		),
		mcp.WithString("script",
			mcp.Description("Speaker script"),
		),
		mcp.WithString("notes",
			mcp.Description("Page notes"),
		),
	)
}

func addPageHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewAddPageCommand(deps,
			req.GetString("project", ""),
			req.GetString("body", ""),
			req.GetString("script", ""),
			req.GetString("notes", ""),
		).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- update_page ---

func updatePageTool() mcp.Tool {
	return mcp.NewTool("update_page",
		mcp.WithDescription("Replace a page's body, script or notes. Omitted fields are left untouched. Assets losing their last reference are deleted."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
		mcp.WithString("page_id",
			mcp.Description("Stable page ID"),
			mcp.Required(),
		),
		mcp.WithString("body",
			mcp.Description("New page body"),
		),
		mcp.WithString("script",
			mcp.Description("New speaker script"),
		),
		mcp.WithString("notes",
			mcp.Description("New page notes"),
		),
	)
}

func updatePageHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		c := commands.NewUpdatePageCommand(deps, req.GetString("project", ""), req.GetString("page_id", ""))
		args := req.GetArguments()
		if v, ok := args["body"].(string); ok {
			c.Body = &v
		}
		if v, ok := args["script"].(string); ok {
			c.Script = &v
		}
		if v, ok := args["notes"].(string); ok {
			c.Notes = &v
		}

		result, err := c.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- remove_page ---

func removePageTool() mcp.Tool {
	return mcp.NewTool("remove_page",
		mcp.WithDescription("Remove a page by its stable ID and clean up assets only that page referenced."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
		mcp.WithString("page_id",
			mcp.Description("Stable page ID"),
			mcp.Required(),
		),
	)
}

func removePageHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewRemovePageCommand(deps,
			req.GetString("project", ""), req.GetString("page_id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- reorder_pages ---

func reorderPagesTool() mcp.Tool {
	return mcp.NewTool("reorder_pages",
		mcp.WithDescription("Rearrange pages into the given order. Every page ID must appear exactly once. Reordering never changes which assets are referenced."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
		mcp.WithString("page_ids",
			mcp.Description("Comma-separated page IDs in the new order"),
			mcp.Required(),
		),
	)
}

func reorderPagesHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var ids []string
		for _, id := range strings.Split(req.GetString("page_ids", ""), ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}

		result, err := commands.NewReorderPagesCommand(deps, req.GetString("project", ""), ids).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- delete_asset ---

func deleteAssetTool() mcp.Tool {
	return mcp.NewTool("delete_asset",
		mcp.WithDescription("Delete an unreferenced asset from both store tiers. Refused while any page still references it."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
		mcp.WithString("kind",
			mcp.Description("Asset kind: resources or attachments"),
			mcp.Required(),
		),
		mcp.WithString("key",
			mcp.Description("Asset key"),
			mcp.Required(),
		),
	)
}

func deleteAssetHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewDeleteAssetCommand(deps,
			req.GetString("project", ""),
			req.GetString("kind", ""),
			req.GetString("key", ""),
		).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- reconcile ---

func reconcileTool() mcp.Tool {
	return mcp.NewTool("reconcile",
		mcp.WithDescription("Diff the reference index against the last reconciled snapshot and delete assets whose last reference went away."),
		mcp.WithString("project",
			mcp.Description("Project name"),
			mcp.Required(),
		),
	)
}

func reconcileHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewReconcileCommand(deps, req.GetString("project", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, d := range result.Report.Deleted {
			fmt.Fprintf(&sb, "deleted %s/%s\n", d.Kind, d.Key)
		}
		for _, w := range result.Report.Warnings {
			fmt.Fprintf(&sb, "warning: %s\n", w)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- transfer_page ---

func transferPageTool() mcp.Tool {
	return mcp.NewTool("transfer_page",
		mcp.WithDescription("Move a page, identity intact, to another project. Assets it references are copied over before the source is cleaned up."),
		mcp.WithString("src_project",
			mcp.Description("Source project name"),
			mcp.Required(),
		),
		mcp.WithString("dst_project",
			mcp.Description("Destination project name"),
			mcp.Required(),
		),
		mcp.WithString("page_id",
			mcp.Description("Stable page ID"),
			mcp.Required(),
		),
	)
}

func transferPageHandler(deps *commands.Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewTransferPageCommand(deps,
			req.GetString("src_project", ""),
			req.GetString("dst_project", ""),
			req.GetString("page_id", ""),
		).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, m := range result.Moved {
			fmt.Fprintf(&sb, "moved %s\n", m)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(&sb, "warning: %s\n", w)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
