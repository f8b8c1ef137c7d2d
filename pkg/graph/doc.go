// Package graph provides the concept graph model, its committed store and
// the visibility rules that decide which part of it a viewer sees.
//
// # Core Types
//
//   - [Graph]: ordered nodes and edges, the wire format for everything
//   - [Node], [Edge]: a concept and a parent→child relation
//   - [Store]: the single committed graph, replaced wholesale on commit
//   - [ExpansionSet]: node IDs whose children are rendered
//   - [Index]: adjacency maps for children, in-degree and descendants
//
// # Graph Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "nodes": [
//	    {"id": "pain", "label": "Pain points", "type": "root"},
//	    {"id": "cost", "label": "Cost", "type": "category"}
//	  ],
//	  "edges": [{"source": "pain", "target": "cost"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("map.json")   // File → Graph
//	graph.WriteGraphFile(g, "out.json")       // Graph → File
//	data, _ := graph.MarshalGraph(g)          // Graph → []byte
//
// Reading validates the result: duplicate ids and dangling edges are
// rejected with an INVALID_GRAPH error.
//
// # Visibility
//
// [Visible] walks from every parentless node and only descends into
// expanded nodes. Reconvergent and cyclic graphs are handled with a
// visited set, so every node appears at most once.
//
// # Concurrency
//
// [Store] is safe for concurrent use. Graph values are plain data; use
// [Graph.Clone] before sharing one that will be mutated.
package graph
