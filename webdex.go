// Package webdex ingests content from websites or source-code repositories,
// normalizes it into text, splits it into overlapping chunks, and produces
// vector embeddings plus line-delimited exports for retrieval-augmented
// generation.
//
// This package contains domain types, interfaces, and pure domain logic
// (chunking, robots rules, URL normalization) following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, qdrant/, gemini/).
package webdex
