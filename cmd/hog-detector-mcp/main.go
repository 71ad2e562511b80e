package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/hog-detector-mcp/internal/config"
	"github.com/ironsheep/hog-detector-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("hog-detector-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("hog-detector-mcp - MCP server for HOG sliding-window object detection")
			fmt.Println()
			fmt.Println("Usage: hog-detector-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  HOG_MCP_BINS=9            Orientation bins")
			fmt.Println("  HOG_MCP_CELL_SIZE=8       Cell side in pixels")
			fmt.Println("  HOG_MCP_BLOCK_SIZE=2      Block side in cells")
			fmt.Println("  HOG_MCP_WORKERS=<cpus>    Pyramid levels scanned at once")
			fmt.Println("  HOG_MCP_RESIZER=linear    Pyramid resampling: linear or bilinear")
			fmt.Println("  HOG_MCP_LOG_LEVEL=info    debug, info, warn or error")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// stdout is for MCP protocol
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.Int("bins", cfg.HOG.Bins),
		zap.Int("cell_size", cfg.HOG.CellSize),
		zap.Int("block_size", cfg.HOG.BlockSize),
		zap.Int("workers", cfg.Workers),
		zap.String("resizer", cfg.Resizer))

	server.Version = Version
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}
	if err := srv.Run(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
