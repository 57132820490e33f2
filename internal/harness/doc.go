// Package harness runs conformance scenarios against the log pipeline.
//
// A scenario names a compilation log, either a file or inline lines, and
// a list of assertions over the correlated timelines, the parse counters
// and the SQL index. Run parses and correlates the log exactly as the CLI
// does, then evaluates every assertion.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	log: compile.log          # relative to the scenario file
//	lines:                    # or inline log lines
//	  - "[engine] opt queued engine=1 id=1 ..."
//	assertions:
//	  - type: target_count
//	    count: 3
//	  - type: timeline_contains
//	    target: 1
//	    kind: Done
//	    comp_id: 101
//	  - type: timeline_order
//	    target: 1
//	    kinds: [Enqueued, Start, Done]
//	  - type: event_count
//	    target: 1
//	    kind: CacheFlushing
//	    count: 1
//	  - type: dropped
//	    code: MALFORMED_LINE
//	    count: 1
//	  - type: final_state
//	    table: targets
//	    where: { id: 1 }
//	    expect: { exec_count: 3000 }
//
// # Assertion Types
//
//   - target_count: the log yields exactly count call targets
//   - timeline_contains: the target's timeline holds an event of kind,
//     optionally with comp_id and reason
//   - timeline_order: the kinds first occur in the given order
//   - event_count: the target (or every target, when omitted) has exactly
//     count events of kind
//   - dropped: exactly count lines were rejected with code
//   - final_state: exactly one row of an index table or view matches
//     where, and its columns equal expect
//
// # Golden Timelines
//
// The correlated timelines of a scenario serialize to indented JSON and
// can be compared with a golden file, so a change in parsing or ordering
// shows up as a readable diff. Session ids are fixed per scenario to keep
// snapshots stable.
package harness
