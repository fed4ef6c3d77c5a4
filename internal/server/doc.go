// Package server implements the MCP (Model Context Protocol) server for
// binary image topology tools.
//
// This package provides a JSON-RPC 2.0 server that exposes contour
// extraction and connected-component labeling through the MCP protocol,
// enabling MCP-compatible clients to analyze the structure of binary
// images.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Preprocessing:
//   - image_binarize: Threshold an image into a binary mask (fixed or Otsu)
//   - image_enhance_contrast: CLAHE local contrast enhancement
//
// Topology Extraction:
//   - image_extract_contours: Nested outer/hole contour tree
//   - image_label_components: Connected components (expansion or two-pass)
//
// Visualization:
//   - image_render_labels: Color-coded component image
//   - image_render_contours: Color-coded traced boundaries
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are
// cached by path and reused across multiple tool calls, avoiding redundant
// disk I/O. The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Contour traces that fail on a single border are not treated as tool
// failures: the affected contour is discarded and reported in the
// trace_faults field of the result.
package server
