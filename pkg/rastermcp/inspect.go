package rastermcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/KyleBrandon/flatbed/pkg/dto"
	"github.com/KyleBrandon/flatbed/pkg/raster"
	"github.com/KyleBrandon/flatbed/pkg/utils"
	"github.com/mark3labs/mcp-go/mcp"
)

// PDFInfo reports page count, per-page geometry, and the pixel dimensions
// each page would rasterize to at the requested DPI.
func (rs *RasterServer) PDFInfo(ctx context.Context, request mcp.CallToolRequest, params PDFInfoRequest) (*mcp.CallToolResult, error) {
	path, err := utils.ValidatePath(rs.workDir, params.Path)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Invalid path: %v", err)),
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

	data, err := utils.ReadFile(path)
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

	info := dto.DocumentInfo{
		PageCount: doc.PageCount(),
		DPI:       dpi,
		Pages:     make([]dto.PageInfo, 0, doc.PageCount()),
	}
	for _, page := range doc.Pages() {
		dims := page.Pixels(dpi)
		info.Pages = append(info.Pages, dto.PageInfo{
			Index:    page.Index,
			WidthPt:  page.WidthPt,
			HeightPt: page.HeightPt,
			Rotation: page.Rotation,
			WidthPx:  dims.Width,
			HeightPx: dims.Height,
		})
	}

	infoJSON, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Failed to marshal document info: %v", err)),
			},
		}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(infoJSON)),
		},
	}, nil
}

// ListPDFs lists PDF files in a directory
func (rs *RasterServer) ListPDFs(ctx context.Context, request mcp.CallToolRequest, params ListPDFsRequest) (*mcp.CallToolResult, error) {
	fullPath, err := utils.ValidatePath(rs.workDir, params.Path)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Invalid path: %v", err)),
			},
		}, nil
	}

	var files []dto.PDFFileInfo

	if params.Recursive {
		err = utils.WalkDir(fullPath, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
				relativePath, _ := filepath.Rel(rs.workDir, path)
				files = append(files, dto.PDFFileInfo{
					Name:     info.Name(),
					Path:     relativePath,
					Size:     info.Size(),
					Modified: info.ModTime(),
				})
			}
			return nil
		})
	} else {
		entries, readErr := utils.ReadDir(fullPath)
		if readErr != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Failed to read directory: %v", readErr)),
				},
			}, nil
		}

		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				continue
			}

			if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
				entryPath := filepath.Join(fullPath, info.Name())
				relativePath, _ := filepath.Rel(rs.workDir, entryPath)
				files = append(files, dto.PDFFileInfo{
					Name:     info.Name(),
					Path:     relativePath,
					Size:     info.Size(),
					Modified: info.ModTime(),
				})
			}
		}
	}

	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Failed to list PDF files: %v", err)),
			},
		}, nil
	}

	result, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Failed to marshal file list: %v", err)),
			},
		}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(result)),
		},
	}, nil
}
