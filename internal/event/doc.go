// Package event defines the typed event model for compiler-pipeline logs.
//
// Every parsed log line becomes exactly one Event. Event is a closed sum
// type: one concrete struct per Kind, each carrying only the fields its
// grammar defines. A field that a kind does not define does not exist on
// that struct, so "absent" is never confused with a measured zero.
//
// Engine-stream kinds (Enqueued, Start, Done, Deoptimization, Invalidation,
// Dequeued, Failed) embed a Header with the engine id, target id, name,
// source and timestamp. CacheFlushing events carry only a compilation id
// and TransferToInterpreter events only a name and source; both are joined
// to call targets later by the correlate package.
//
// Cross-kind accessors (TierOf, CompileTimeOf, ...) return (value, ok)
// so callers that aggregate over mixed kinds must decide what an absent
// value means for them.
package event
