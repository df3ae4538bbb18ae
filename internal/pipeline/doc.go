// Package pipeline drives assets through the encoded → decoded → cut state
// machine. Decoding is intra-file parallel but inter-file sequential to bound
// peak memory; cutting runs a bounded worker pool since it is dominated by
// external subprocesses. Every per-asset failure is isolated: it is recorded
// against that asset and never aborts its siblings.
package pipeline
