package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/image-topology-mcp/internal/raster"
	"github.com/ironsheep/image-topology-mcp/internal/topology"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_extract_contours").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Preprocessing
	case "image_binarize":
		return s.handleImageBinarize(args)
	case "image_enhance_contrast":
		return s.handleImageEnhanceContrast(args)

	// Topology Extraction
	case "image_extract_contours":
		return s.handleImageExtractContours(args)
	case "image_label_components":
		return s.handleImageLabelComponents(args)

	// Visualization
	case "image_render_labels":
		return s.handleImageRenderLabels(args)
	case "image_render_contours":
		return s.handleImageRenderContours(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// binarize loads an image and converts it to a binary raster using the
// optional threshold, falling back to Otsu selection when absent.
func (s *Server) binarize(path string, threshold *int) (*raster.Raster, uint8, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, 0, err
	}
	return binarizeImage(img, threshold)
}

func binarizeImage(img image.Image, threshold *int) (*raster.Raster, uint8, error) {
	if threshold == nil {
		bin, level := raster.FromImageOtsu(img)
		return bin, level, nil
	}
	if *threshold < 0 || *threshold > 255 {
		return nil, 0, fmt.Errorf("threshold %d out of range [0, 255]", *threshold)
	}
	return raster.FromImage(img, uint8(*threshold)), uint8(*threshold), nil
}

// parseConnectivity maps the wire value (4 or 8, 0 defaulting to 4) to a
// topology connectivity selector.
func parseConnectivity(v int) (topology.Connectivity, error) {
	switch v {
	case 0, 4:
		return topology.Connectivity4, nil
	case 8:
		return topology.Connectivity8, nil
	default:
		return 0, fmt.Errorf("connectivity must be 4 or 8, got %d", v)
	}
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return raster.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return raster.GetDimensions(s.cache, a.Path)
}

// === Preprocessing Handlers ===

type imageBinarizeArgs struct {
	Path      string `json:"path"`
	Threshold *int   `json:"threshold"`
}

func (s *Server) handleImageBinarize(args json.RawMessage) (interface{}, error) {
	var a imageBinarizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	threshold := -1
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	result, _, err := raster.Binarize(img, threshold)
	return result, err
}

type imageEnhanceContrastArgs struct {
	Path        string  `json:"path"`
	BlockRadius int     `json:"block_radius"`
	Bins        int     `json:"bins"`
	Slope       float64 `json:"slope"`
	Fast        bool    `json:"fast"`
}

func (s *Server) handleImageEnhanceContrast(args json.RawMessage) (interface{}, error) {
	var a imageEnhanceContrastArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.BlockRadius == 0 {
		a.BlockRadius = 63
	}
	if a.Bins == 0 {
		a.Bins = 255
	}
	if a.Slope == 0 {
		a.Slope = 3.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return raster.EnhanceContrast(img, a.BlockRadius, a.Bins, a.Slope, a.Fast)
}

// === Topology Extraction Handlers ===

// ContourSummary is one node of the contour tree in tool responses.
type ContourSummary struct {
	// Kind is "outer", "hole", or "background" for the root.
	Kind string `json:"kind"`

	// PointCount is the number of traced boundary points.
	PointCount int `json:"point_count"`

	// Seed is the first boundary point, omitted for the root.
	Seed *topology.Point `json:"seed,omitempty"`

	// Points is the full traced boundary, present only when requested.
	Points []topology.Point `json:"points,omitempty"`

	// Children are the directly nested contours in discovery order.
	Children []*ContourSummary `json:"children,omitempty"`
}

// ExtractContoursResult is the response of the image_extract_contours tool.
type ExtractContoursResult struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Threshold     uint8  `json:"threshold"`
	OuterContours int    `json:"outer_contours"`
	HoleContours  int    `json:"hole_contours"`

	// Tree is the contour hierarchy rooted at the background node.
	Tree *ContourSummary `json:"tree"`

	// TraceFaults lists contours that were discarded because their border
	// walk failed. Empty for well-formed binary input.
	TraceFaults []string `json:"trace_faults,omitempty"`
}

type imageExtractContoursArgs struct {
	Path          string `json:"path"`
	Threshold     *int   `json:"threshold"`
	IncludePoints bool   `json:"include_points"`
}

func (s *Server) handleImageExtractContours(args json.RawMessage) (interface{}, error) {
	var a imageExtractContoursArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	bin, level, err := s.binarize(a.Path, a.Threshold)
	if err != nil {
		return nil, err
	}

	tree, err := topology.ExtractContours(bin)
	var faults []string
	if err != nil {
		if !errors.Is(err, topology.ErrTraceAborted) {
			return nil, err
		}
		for _, e := range unwrapJoined(err) {
			faults = append(faults, e.Error())
		}
	}

	return &ExtractContoursResult{
		Width:         bin.Width(),
		Height:        bin.Height(),
		Threshold:     level,
		OuterContours: tree.Count(topology.ContourOuter),
		HoleContours:  tree.Count(topology.ContourHole),
		Tree:          summarizeContour(tree, tree.Root(), a.IncludePoints),
		TraceFaults:   faults,
	}, nil
}

// summarizeContour converts a tree node and its descendants to the wire
// representation.
func summarizeContour(tree *topology.ContourTree, id int, includePoints bool) *ContourSummary {
	node := tree.Node(id)
	summary := &ContourSummary{
		Kind:       node.Kind.String(),
		PointCount: len(node.Points),
	}
	if len(node.Points) > 0 {
		seed := node.Points[0]
		summary.Seed = &seed
	}
	if includePoints {
		summary.Points = node.Points
	}
	for _, child := range node.Children {
		summary.Children = append(summary.Children, summarizeContour(tree, child, includePoints))
	}
	return summary
}

// unwrapJoined flattens an errors.Join result into its parts.
func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// LabelComponentsResult is the response of the image_label_components tool.
type LabelComponentsResult struct {
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Threshold      uint8  `json:"threshold"`
	Connectivity   int    `json:"connectivity"`
	Algorithm      string `json:"algorithm"`
	ComponentCount int    `json:"component_count"`
}

type imageLabelComponentsArgs struct {
	Path         string `json:"path"`
	Threshold    *int   `json:"threshold"`
	Connectivity int    `json:"connectivity"`
	Algorithm    string `json:"algorithm"`
}

func (s *Server) handleImageLabelComponents(args json.RawMessage) (interface{}, error) {
	var a imageLabelComponentsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	conn, err := parseConnectivity(a.Connectivity)
	if err != nil {
		return nil, err
	}
	if a.Algorithm == "" {
		a.Algorithm = "expansion"
	}

	bin, level, err := s.binarize(a.Path, a.Threshold)
	if err != nil {
		return nil, err
	}

	var count int
	switch a.Algorithm {
	case "expansion":
		_, count, err = topology.LabelComponents(bin, conn)
	case "two-pass":
		_, count, err = topology.LabelComponentsTwoPass(bin, conn)
	default:
		return nil, fmt.Errorf("unknown algorithm: %s", a.Algorithm)
	}
	if err != nil {
		return nil, err
	}

	wireConn := 4
	if conn == topology.Connectivity8 {
		wireConn = 8
	}
	return &LabelComponentsResult{
		Width:          bin.Width(),
		Height:         bin.Height(),
		Threshold:      level,
		Connectivity:   wireConn,
		Algorithm:      a.Algorithm,
		ComponentCount: count,
	}, nil
}

// === Visualization Handlers ===

// RenderLabelsResult is the response of the image_render_labels tool.
type RenderLabelsResult struct {
	*topology.RenderResult
	ComponentCount int `json:"component_count"`
}

type imageRenderLabelsArgs struct {
	Path         string `json:"path"`
	Threshold    *int   `json:"threshold"`
	Connectivity int    `json:"connectivity"`
}

func (s *Server) handleImageRenderLabels(args json.RawMessage) (interface{}, error) {
	var a imageRenderLabelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	conn, err := parseConnectivity(a.Connectivity)
	if err != nil {
		return nil, err
	}
	bin, _, err := s.binarize(a.Path, a.Threshold)
	if err != nil {
		return nil, err
	}

	labels, count, err := topology.LabelComponents(bin, conn)
	if err != nil {
		return nil, err
	}
	rendered, err := topology.RenderLabels(labels)
	if err != nil {
		return nil, err
	}
	return &RenderLabelsResult{RenderResult: rendered, ComponentCount: count}, nil
}

// RenderContoursResult is the response of the image_render_contours tool.
type RenderContoursResult struct {
	*topology.RenderResult
	OuterContours int `json:"outer_contours"`
	HoleContours  int `json:"hole_contours"`
}

type imageRenderContoursArgs struct {
	Path      string `json:"path"`
	Threshold *int   `json:"threshold"`
}

func (s *Server) handleImageRenderContours(args json.RawMessage) (interface{}, error) {
	var a imageRenderContoursArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	bin, _, err := s.binarize(a.Path, a.Threshold)
	if err != nil {
		return nil, err
	}

	tree, err := topology.ExtractContours(bin)
	if err != nil && !errors.Is(err, topology.ErrTraceAborted) {
		return nil, err
	}
	rendered, err := topology.RenderContours(tree, bin.Width(), bin.Height())
	if err != nil {
		return nil, err
	}
	return &RenderContoursResult{
		RenderResult:  rendered,
		OuterContours: tree.Count(topology.ContourOuter),
		HoleContours:  tree.Count(topology.ContourHole),
	}, nil
}
