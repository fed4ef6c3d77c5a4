package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema fragment shared by every tool: all operations
// start from an image file on disk.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// thresholdProperty describes the optional binarization threshold shared
// by the topology tools.
func thresholdProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Grayscale threshold (0-255) separating background from foreground. Omit to select automatically with Otsu's method.",
	}
}

// connectivityProperty describes the neighbor connectivity selector of the
// labeling tools.
func connectivityProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"enum":        []int{4, 8},
		"description": "Neighbor connectivity: 4 (orthogonal) or 8 (orthogonal + diagonal). Default 4.",
		"default":     4,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Preprocessing
		{
			Name:        "image_binarize",
			Description: "Convert an image to a binary foreground/background mask and return it as base64 PNG. The mask is the input every topology tool works on.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"threshold": thresholdProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_enhance_contrast",
			Description: "Enhance local contrast with CLAHE (Contrast Limited Adaptive Histogram Equalization) and return the result as base64 PNG. Useful before binarizing low-contrast images.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"block_radius": map[string]interface{}{
						"type":        "integer",
						"description": "Radius of the local equalization window. Default 63.",
						"default":     63,
					},
					"bins": map[string]interface{}{
						"type":        "integer",
						"description": "Number of histogram bins (1-256). Default 255.",
						"default":     255,
					},
					"slope": map[string]interface{}{
						"type":        "number",
						"description": "Contrast limiting slope (>= 1). 1 keeps the original image. Default 3.",
						"default":     3.0,
					},
					"fast": map[string]interface{}{
						"type":        "boolean",
						"description": "Use the faster block-interpolated variant. Default false.",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},

		// Topology Extraction
		{
			Name:        "image_extract_contours",
			Description: "Binarize an image and extract its nested contour tree: outer borders of foreground regions and hole borders of enclosed background, with their nesting structure.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"threshold": thresholdProperty(),
					"include_points": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the full boundary point lists in the response. Default false (point counts only).",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_label_components",
			Description: "Binarize an image and partition its foreground into connected components, returning the component count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty(),
					"threshold":    thresholdProperty(),
					"connectivity": connectivityProperty(),
					"algorithm": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"expansion", "two-pass"},
						"description": "Labeling algorithm. Both produce the same partition; expansion yields contiguous labels. Default expansion.",
						"default":     "expansion",
					},
				},
				"required": []string{"path"},
			},
		},

		// Visualization
		{
			Name:        "image_render_labels",
			Description: "Label the connected components of a binarized image and render them as a color-coded base64 PNG, one color per component.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty(),
					"threshold":    thresholdProperty(),
					"connectivity": connectivityProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_render_contours",
			Description: "Extract the contours of a binarized image and render the traced boundaries as a color-coded base64 PNG, one color per contour.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"threshold": thresholdProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
