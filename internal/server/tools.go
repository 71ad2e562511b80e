package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func templatePathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a JSON template file holding either dense weights or a linear SVM model",
	}
}

func filterProperties(props map[string]interface{}) map[string]interface{} {
	props["min_score"] = map[string]interface{}{
		"type":        "number",
		"description": "Optional. Drop detections scoring below this value after scanning",
	}
	props["min_area"] = map[string]interface{}{
		"type":        "number",
		"description": "Optional. Drop boxes smaller than this many square pixels (border boxes are clamped and can shrink)",
	}
	props["annotate"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Also return the image with every box outlined and labelled with its score, as base64 PNG. Default false",
		"default":     false,
	}
	props["box_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Outline color as #RRGGBB when annotate is set. Default #FF0000",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Images
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. Images are cached by path; set reload after the file changes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Reread the file instead of using the cached copy. Default false",
						"default":     false,
					},
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

		// HOG features
		{
			Name:        "hog_extract",
			Description: "Compute the HOG feature map of an image's luminance and report its size: padded image dimensions, block grid, channels per block and how many blocks carry any gradient.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "hog_template_info",
			Description: "Describe a detection template: block grid, channels, window size in pixels, weight range and whether it matches the server's HOG configuration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template_path": templatePathProperty(),
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Reread the file instead of using the cached copy. Default false",
						"default":     false,
					},
				},
				"required": []string{"template_path"},
			},
		},
		{
			Name:        "hog_template_save",
			Description: "Read a template file (dense weights or a linear SVM model) and write its dense weights to output_path. Later calls naming output_path use the new file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template_path": templatePathProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the dense JSON template to write",
					},
				},
				"required": []string{"template_path", "output_path"},
			},
		},

		// Detection
		{
			Name:        "hog_detect",
			Description: "Slide a template over the image's HOG features at native scale. Returns boxes as x1,y1,x2,y2 with x along rows and y along columns, plus the score. Only positions scoring strictly above the threshold are reported; overlapping boxes are not merged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": filterProperties(map[string]interface{}{
					"path":          pathProperty(),
					"template_path": templatePathProperty(),
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Report positions scoring strictly above this value",
					},
				}),
				"required": []string{"path", "template_path", "threshold"},
			},
		},
		{
			Name:        "hog_detect_multiscale",
			Description: "Run hog_detect on resized copies of the image, one per scale factor, and map every box back onto the original image. Scales below 1 find objects larger than the template window.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": filterProperties(map[string]interface{}{
					"path":          pathProperty(),
					"template_path": templatePathProperty(),
					"scales": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Positive resize factors, e.g. [1, 0.75, 0.5]",
					},
					"thresholds": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "One threshold per scale, in the same order",
					},
				}),
				"required": []string{"path", "template_path", "scales", "thresholds"},
			},
		},
		{
			Name:        "hog_window_features",
			Description: "Resample a region to the template's window size and return its HOG descriptor in template layout, with its score against the template. Use it to collect training samples for an external SVM or to check why a region scored as it did. Coordinates follow the detection boxes: x along rows, y along columns, x2/y2 exclusive.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":          pathProperty(),
					"template_path": templatePathProperty(),
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Top row of the region",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Left column of the region",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom row of the region (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Right column of the region (exclusive)",
					},
				},
				"required": []string{"path", "template_path", "x1", "y1", "x2", "y2"},
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
