package dto

// PageInfo describes the geometry of a single PDF page
type PageInfo struct {
	Index    int     `json:"index"`
	WidthPt  float64 `json:"width_pt"`
	HeightPt float64 `json:"height_pt"`
	Rotation int     `json:"rotation,omitempty"`
	WidthPx  int     `json:"width_px"`
	HeightPx int     `json:"height_px"`
}

// DocumentInfo summarizes a loaded PDF document
type DocumentInfo struct {
	PageCount int        `json:"page_count"`
	DPI       int        `json:"dpi"`
	Pages     []PageInfo `json:"pages"`
}
