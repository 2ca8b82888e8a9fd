// Package harness runs conformance scenarios against the compressor and
// the replay reducer.
//
// A scenario is a YAML file describing a raw capture stream and what the
// pipeline must produce from it: optionally the exact wire-tag sequence of
// the compressed log, and the final text and cursor after replay. Every
// scenario additionally checks the structural invariants that hold for any
// input (first-entry latency anchoring, minimum run length, foldable
// segment content) and the round-trip property: reducing the compressed
// log must reproduce what applying the raw events directly would.
//
// Golden mode serializes the compressed log as indented JSON and compares
// it against testdata/golden/<name>.golden via goldie; run the package
// tests with -update to regenerate.
package harness
