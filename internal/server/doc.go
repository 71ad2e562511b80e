// Package server implements the MCP (Model Context Protocol) server for HOG object
// detection.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line on stdin and one
// response per line on stdout. Logs go to stderr through the zap logger handed to New.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Images:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// HOG features:
//   - hog_extract: Feature map size for an image
//   - hog_template_info: Shape and window of a template file
//   - hog_template_save: Write a template's dense weights to a file
//   - hog_window_features: Descriptor of one region, resampled to the window
//
// Detection:
//   - hog_detect: Single-scale sliding-window scan
//   - hog_detect_multiscale: Scan over an image pyramid
//
// Both detection tools can return the image with the boxes drawn on it.
//
// # Caching
//
// Images, their grayscale matrices and decoded templates are cached by path for the
// lifetime of the process. Every detection call builds a fresh detection.Detector
// around the cached template, so concurrent calls share nothing mutable.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code -32000
// and the Go error string as data.
package server
