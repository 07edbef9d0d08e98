// Package harness runs scripted two-peer scenarios in process.
//
// A scenario is a YAML file naming a layout, a list of steps and a list of
// assertions. Each step is local input for one peer, a poll of one peer's
// transport, or a raw buffer injected into one peer's inbound queue. Both
// peers are real Sessions over real Boards, connected by a transport.Pipe;
// nothing is mocked.
//
// Every exchanged buffer is recorded twice: into an in-memory turn log (the
// same store the CLI uses), and into the scenario trace. Sequence numbers
// come from one deterministic clock shared by both peers, so a trace is a
// total order and compares byte for byte against a golden file:
//
//	go test ./internal/harness -update
//
// regenerates testdata/golden.
package harness
