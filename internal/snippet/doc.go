// Package snippet defines the legal snippet domain model shared by every
// layer: the record itself, partial updates with change tracking for
// selective embedding recomputation, tag-set semantics, and the error
// taxonomy surfaced to agents.
package snippet
