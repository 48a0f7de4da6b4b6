// Package graph owns the task dependency DAG: construction from a candidate
// plan, structural validation, cycle detection, topological layering,
// critical-path computation, and the per-task state machine.
//
// A TaskGraph is mutable only during construction and validation. Once
// Validate succeeds, edges and membership are frozen; during execution only
// the per-task mutable fields (status, attempts, output, error) change.
package graph
