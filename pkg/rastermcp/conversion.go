package rastermcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/KyleBrandon/flatbed/pkg/dto"
	"github.com/KyleBrandon/flatbed/pkg/raster"
	"github.com/KyleBrandon/flatbed/pkg/utils"
	"github.com/mark3labs/mcp-go/mcp"
)

// RasterizePDF renders every page of a PDF to an image and reassembles the
// images into a new PDF with the same page geometry.
func (rs *RasterServer) RasterizePDF(ctx context.Context, request mcp.CallToolRequest, params RasterizePDFRequest) (*mcp.CallToolResult, error) {
	if params.InputPath == "" || params.OutputPath == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent("Both input_path and output_path are required"),
			},
		}, nil
	}

	inputPath, err := utils.ValidatePath(rs.workDir, params.InputPath)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Invalid input path: %v", err)),
			},
		}, nil
	}

	outputPath, err := utils.ValidatePath(rs.workDir, params.OutputPath)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Invalid output path: %v", err)),
			},
		}, nil
	}

	dpi := params.DPI
	if dpi == 0 {
		dpi = raster.DefaultDPI
	}
	if err := (raster.Spec{DPI: dpi}).Validate(); err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Invalid DPI: %v", err)),
			},
		}, nil
	}

	encoder, err := raster.EncoderFor(params.Format, params.Quality)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Invalid image settings: %v", err)),
			},
		}, nil
	}

	engine, err := rs.engines.GetEngine(params.Engine)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Render engine error: %v", err)),
			},
		}, nil
	}

	data, err := utils.ReadFile(inputPath)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Failed to read PDF: %v", err)),
			},
		}, nil
	}

	doc, err := raster.Load(data)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Failed to load PDF: %v", err)),
			},
		}, nil
	}

	out, err := raster.ConvertDocument(ctx, doc, raster.Spec{DPI: dpi}, raster.Options{
		Engine:  engine,
		Encoder: encoder,
	})
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Rasterization failed: %v", err)),
			},
		}, nil
	}

	if err := utils.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Failed to create output directory: %v", err)),
			},
		}, nil
	}

	if err := utils.WriteFile(outputPath, out, 0644); err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Failed to write output: %v", err)),
			},
		}, nil
	}

	summary := dto.ConversionSummary{
		InputPath:   inputPath,
		OutputPath:  outputPath,
		PageCount:   doc.PageCount(),
		DPI:         dpi,
		Format:      string(encoder.Format()),
		Engine:      engine.Info().Name,
		OutputBytes: len(out),
	}

	summaryJSON, _ := json.MarshalIndent(summary, "", "  ")

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(summaryJSON)),
		},
	}, nil
}
