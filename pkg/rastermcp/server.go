// Package rastermcp provides MCP server for PDF rasterization and inspection
package rastermcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/KyleBrandon/flatbed/pkg/raster"
	"github.com/KyleBrandon/flatbed/pkg/utils"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type RasterServer struct {
	ctx       context.Context
	McpServer *server.MCPServer
	engines   *raster.EngineManager
	workDir   string
}

// Request types for MCP tools
type RasterizePDFRequest struct {
	InputPath  string `json:"input_path" mcp:"Path of the PDF to rasterize, relative to the working directory"`
	OutputPath string `json:"output_path" mcp:"Path to write the rasterized PDF to"`
	DPI        int    `json:"dpi,omitempty" mcp:"Raster resolution in dots per inch (default: 72)"`
	Quality    int    `json:"quality,omitempty" mcp:"JPEG quality 1-100 (default: 85)"`
	Format     string `json:"format,omitempty" mcp:"Page image format: jpeg or lossless (default: jpeg)"`
	Engine     string `json:"engine,omitempty" mcp:"Render engine to use (default: mupdf)"`
}

type PDFInfoRequest struct {
	Path string `json:"path" mcp:"Path of the PDF, relative to the working directory"`
	DPI  int    `json:"dpi,omitempty" mcp:"DPI used for the reported pixel dimensions (default: 72)"`
}

type ListPDFsRequest struct {
	Path      string `json:"path,omitempty" mcp:"Directory path (optional, defaults to the working directory)"`
	Recursive bool   `json:"recursive,omitempty" mcp:"Whether to list recursively"`
}

type ListEnginesRequest struct {
	// No parameters needed
}

func NewRasterServer(ctx context.Context, workDir string) (*RasterServer, error) {
	s := &RasterServer{}

	info, err := utils.Stat(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access working directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory is not a directory: %s", workDir)
	}

	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	s.ctx = ctx
	s.workDir = absDir
	s.engines = raster.NewDefaultManager()
	s.McpServer = server.NewMCPServer("flatbed-server", "v1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false))
	s.addTools()
	s.addResources()

	return s, nil
}

func (rs *RasterServer) addResources() {
	// Resource: PDF Documents collection
	documentsResource := mcp.NewResource(
		"pdf://documents/",
		"PDF Documents",
		mcp.WithResourceDescription("Collection of PDF documents in the working directory"),
		mcp.WithMIMEType("application/json"),
	)
	rs.McpServer.AddResource(documentsResource, rs.ListDocuments)
}

func (rs *RasterServer) addTools() {
	// Tool 1: Rasterize a PDF into an image-only PDF
	rasterizeTool := mcp.NewTool(
		"rasterize_pdf",
		mcp.WithDescription("Rasterize a PDF into a visually identical image-only PDF with the same page geometry"),
		mcp.WithString("input_path", mcp.Description("Path of the PDF to rasterize"), mcp.Required()),
		mcp.WithString("output_path", mcp.Description("Path to write the rasterized PDF to"), mcp.Required()),
		mcp.WithNumber("dpi", mcp.Description("Raster resolution in dots per inch (default: 72)")),
		mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 (default: 85)")),
		mcp.WithString("format", mcp.Description("Page image format: jpeg or lossless (default: jpeg)")),
		mcp.WithString("engine", mcp.Description("Render engine to use (default: mupdf)")),
	)
	rs.McpServer.AddTool(rasterizeTool, mcp.NewTypedToolHandler(rs.RasterizePDF))

	// Tool 2: Report page geometry and raster dimensions
	infoTool := mcp.NewTool(
		"pdf_info",
		mcp.WithDescription("Report page count, page geometry, and raster dimensions of a PDF"),
		mcp.WithString("path", mcp.Description("Path of the PDF"), mcp.Required()),
		mcp.WithNumber("dpi", mcp.Description("DPI used for the reported pixel dimensions (default: 72)")),
	)
	rs.McpServer.AddTool(infoTool, mcp.NewTypedToolHandler(rs.PDFInfo))

	// Tool 3: List PDF files in the working directory
	listTool := mcp.NewTool(
		"list_pdfs",
		mcp.WithDescription("List PDF files in the working directory"),
		mcp.WithString("path", mcp.Description("Directory path (optional, defaults to the working directory)")),
		mcp.WithBoolean("recursive", mcp.Description("Whether to list recursively")),
	)
	rs.McpServer.AddTool(listTool, mcp.NewTypedToolHandler(rs.ListPDFs))

	// Tool 4: List available render engines
	enginesTool := mcp.NewTool(
		"list_engines",
		mcp.WithDescription("List available render engines and their capabilities"),
	)
	rs.McpServer.AddTool(enginesTool, mcp.NewTypedToolHandler(rs.ListEngines))
}

// ListEngines lists available render engines and their capabilities
func (rs *RasterServer) ListEngines(ctx context.Context, request mcp.CallToolRequest, params ListEnginesRequest) (*mcp.CallToolResult, error) {
	engines := rs.engines.ListEngines()

	enginesJSON, _ := json.MarshalIndent(engines, "", "  ")

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf("Available Render Engines:\n\n%s", string(enginesJSON))),
		},
	}, nil
}

// Resource handlers

func (rs *RasterServer) ListDocuments(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var resources []mcp.ResourceContents

	err := utils.WalkDir(rs.workDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
			return nil
		}

		relativePath, _ := filepath.Rel(rs.workDir, path)
		docResource := map[string]interface{}{
			"name":     info.Name(),
			"path":     relativePath,
			"size":     info.Size(),
			"modified": info.ModTime(),
			"uri":      fmt.Sprintf("pdf://documents/%s", relativePath),
		}

		docJSON, _ := json.MarshalIndent(docResource, "", "  ")
		resources = append(resources, mcp.TextResourceContents{
			URI:      fmt.Sprintf("pdf://documents/%s", relativePath),
			MIMEType: "application/json",
			Text:     string(docJSON),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing PDF files: %w", err)
	}

	return resources, nil
}
