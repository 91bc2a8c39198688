// Package tana models the Tana Input API content tree and posts
// assembled nodes to it.
package tana

// Node is one named, optionally described, nestable unit in the Input
// API content tree.
type Node struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	File        *FileAttachment `json:"file,omitempty"`
	Children    []Node          `json:"children,omitempty"`
}

// FileAttachment carries base64-encoded file contents for a node.
type FileAttachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
}

// Request is the Input API envelope: where to insert, and what.
type Request struct {
	TargetNodeID string `json:"targetNodeId"`
	Nodes        []Node `json:"nodes"`
}
