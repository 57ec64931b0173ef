// Package catalog loads sequencing records defined in CUE.
//
// A catalogue is a directory of .cue files declaring records under the
// top-level "record" field, keyed by a label that doubles as the record
// name unless "name" is set:
//
//	record: seq1: {description: "demo", a: "a", b: "b", a_alt: "a'", b_alt: "b'"}
//	record: par:  {description: "comma", a: "x", b: "y", operator: ","}
//
// Every entry is unified with the embedded #Record definition, so unknown
// fields, empty terms and operators other than ";" and "," are rejected
// with file positions before anything reaches the store.
package catalog
