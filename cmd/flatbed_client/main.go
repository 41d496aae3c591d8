package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/KyleBrandon/flatbed/pkg/dto"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

func main() {
	// Define command line flags
	server := flag.String("server", "", "Server command to execute")
	input := flag.String("input", "", "PDF to rasterize, relative to the server working directory")
	output := flag.String("output", "", "Output path for the rasterized PDF")
	dpi := flag.Int("dpi", 0, "Raster resolution in dots per inch")
	flag.Parse()

	if *server == "" {
		fmt.Println("Error: You must specify the --server <server command>")
		flag.Usage()
		os.Exit(1)
	}

	// Create a context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Println("Initializing stdio client...")

	// Remaining arguments are passed through to the server command
	c, err := client.NewStdioMCPClient(*server, nil, flag.Args()...)
	if err != nil {
		slog.Error("Failed to create new client", "error", err)
		os.Exit(1)
	}
	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "flatbed-client",
		Version: "1.0.0",
	}

	initResult, err := c.Initialize(ctx, initRequest)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	fmt.Printf(
		"Initialized with server: %s %s\n\n",
		initResult.ServerInfo.Name,
		initResult.ServerInfo.Version,
	)

	// List Tools
	fmt.Println("Listing available tools...")
	toolsRequest := mcp.ListToolsRequest{}
	tools, err := c.ListTools(ctx, toolsRequest)
	if err != nil {
		log.Fatalf("Failed to list tools: %v", err)
	}
	for _, tool := range tools.Tools {
		fmt.Printf("- %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()

	req := mcp.CallToolRequest{}
	req.Params.Name = "list_engines"

	result, err := c.CallTool(ctx, req)
	if err != nil {
		slog.Error("Failed to list render engines", "error", err)
		os.Exit(1)
	}

	printToolResult(result)

	if *input == "" {
		return
	}

	req = mcp.CallToolRequest{}
	req.Params.Name = "pdf_info"
	req.Params.Arguments = map[string]any{"path": *input, "dpi": *dpi}

	result, err = c.CallTool(ctx, req)
	if err != nil {
		slog.Error("Failed to inspect the PDF", "error", err)
		os.Exit(1)
	}
	if result.IsError {
		printToolResult(result)
		os.Exit(1)
	}

	textContent, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		slog.Error("Invalid content returned from pdf_info")
		os.Exit(1)
	}

	var info dto.DocumentInfo
	err = json.Unmarshal([]byte(textContent.Text), &info)
	if err != nil {
		slog.Error("Failed to unmarshal the document info", "content", textContent, "error", err)
		os.Exit(1)
	}
	fmt.Printf("Document has %d pages at %d DPI\n\n", info.PageCount, info.DPI)

	if *output == "" {
		return
	}

	req = mcp.CallToolRequest{}
	req.Params.Name = "rasterize_pdf"
	req.Params.Arguments = map[string]any{
		"input_path":  *input,
		"output_path": *output,
		"dpi":         *dpi,
	}

	result, err = c.CallTool(ctx, req)
	if err != nil {
		slog.Error("Failed to rasterize the PDF", "error", err)
		os.Exit(1)
	}
	if result.IsError {
		printToolResult(result)
		os.Exit(1)
	}

	textContent, ok = result.Content[0].(mcp.TextContent)
	if !ok {
		slog.Error("Invalid content returned from rasterize_pdf")
		os.Exit(1)
	}

	var summary dto.ConversionSummary
	err = json.Unmarshal([]byte(textContent.Text), &summary)
	if err != nil {
		slog.Error("Failed to unmarshal the conversion summary", "content", textContent, "error", err)
		os.Exit(1)
	}
	fmt.Printf("Rasterized %d pages to %s (%d bytes)\n", summary.PageCount, summary.OutputPath, summary.OutputBytes)
}

// Helper function to print tool results
func printToolResult(result *mcp.CallToolResult) {
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			fmt.Println(textContent.Text)
		} else {
			jsonBytes, _ := json.MarshalIndent(content, "", "  ")
			fmt.Println(string(jsonBytes))
		}
	}
}
