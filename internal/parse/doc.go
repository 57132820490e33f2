// Package parse turns raw log lines into typed events.
//
// A Parser first classifies a line into one of three grammars, in priority
// order:
//
//  1. engine operation: the line starts with the engine marker
//     ("[engine] opt") followed by an operation keyword;
//  2. code-cache flushing: the line contains the flushing marker
//     ("*flushing ");
//  3. interpreter fallback: anything else, which only yields an event when
//     it has a "name(source)" shape.
//
// Engine lines are split on '|' and must have the exact segment count of
// their kind (see event.Kind.Segments). Each segment is then matched
// against an anchored label pattern ("Tier 1", "CompId 42", "UTC ...").
// Parsing is atomic: any mismatch returns an *Error and no event.
//
// Errors are recoverable per line. Callers drop the line and continue;
// the codes let a CLI report what was skipped and why.
package parse
