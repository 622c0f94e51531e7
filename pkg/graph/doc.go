// Package graph provides the input serialization types for force layouts.
//
// This package defines the wire format in which node/edge data arrives from
// the upstream analysis collaborator. It is deliberately permissive: edges
// may name ids that do not exist and categories may be unknown. Validation
// (duplicate ids) and filtering (dangling edges) happen when the layout
// model is built by package force.
//
// # Format
//
// Graphs use a simple node-link format, as JSON:
//
//	{
//	  "nodes": [{"id": "cmd", "category": "module"}, {"id": "main.go", "category": "file"}],
//	  "edges": [{"source": "cmd", "target": "main.go"}]
//	}
//
// or the equivalent YAML. [ReadGraphFile] selects the decoder by extension.
//
// # Categories
//
// [Category] values are normalized by [Category.Normalize]; anything
// unrecognized becomes [CategoryOther]. Categories scale node collision radii
// via [Category.RadiusScale].
//
// # Concurrency
//
// All functions are safe for concurrent use. Graph values are plain data.
package graph
