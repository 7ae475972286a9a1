package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"deckvault/internal/adapters/filesystem"
	mcpadapter "deckvault/internal/adapters/mcp"
	"deckvault/internal/adapters/oss"
	"deckvault/internal/adapters/sqlite"
	"deckvault/internal/application"
	"deckvault/internal/application/commands"
	"deckvault/internal/config"
	"deckvault/internal/ports"
	"deckvault/internal/store"
)

func main() {
	rootFlag := flag.String("root", config.Root(), "path to the projects root")
	flag.Parse()

	repo := filesystem.NewRepository(*rootFlag)
	ledger, err := sqlite.Open(sqlite.DefaultPath(repo.Root()))
	if err != nil {
		log.Fatalf("deckvault-mcp: %v", err)
	}
	defer ledger.Close()

	var remote ports.ObjectStorage
	ossCfg, ossConfigured := config.OSSFromEnv()
	if ossConfigured {
		client, err := oss.New(ossCfg)
		if err != nil {
			log.Fatalf("deckvault-mcp: %v", err)
		}
		remote = client
	}

	deps := &commands.Deps{
		Repo:      repo,
		Snapshots: repo,
		Stores: &store.Factory{
			Root:   repo.Root(),
			Prefix: ossCfg.Prefix,
			Remote: remote,
			Ledger: ledger,
		},
		Locks: application.NewLocks(),
	}

	mcpServer := server.NewMCPServer(
		"deckvault-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, deps)
	mcpadapter.RegisterWriteTools(mcpServer, deps)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("deckvault-mcp: %v", err)
	}
}
