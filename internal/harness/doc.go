// Package harness runs YAML scenarios against a fresh record store and the
// sequencing engine, producing a deterministic trace of every step.
//
// # Scenario Format
//
//	name: substitute_left
//	description: "Substituting the left term uses its alternate"
//	catalogs:
//	  - records.cue
//	setup:
//	  - {name: Seq1, description: demo, term_a: a, term_b: b, term_a_alt: "a'", term_b_alt: "b'", operator: ";"}
//	flow:
//	  - substitute: {name: Seq1, description: demo, side: left}
//	    expect:
//	      render: "a' ; b"
//	      substituted_side: left
//	  - create: {name: Bad, description: "", term_a: a, term_b: b}
//	    expect:
//	      error: validation
//	      field: description
//	assertions:
//	  - type: record_count
//	    count: 1
//	  - type: trace_order
//	    ops: [substitute, create]
//
// Each flow step names exactly one operation: create, list, fetch, get,
// delete, compose, substitute or close. A step without expect must
// succeed; a step with expect.error must fail with that error kind
// (validation, storage, closed, not_found). Steps without arguments are
// written with an empty mapping, e.g. `list: {}` or `close: {}`.
//
// # Golden Files
//
// RunWithGolden compares the trace with testdata/golden/<name>.golden.
// Regenerate with:
//
//	go test ./internal/harness -update
package harness
