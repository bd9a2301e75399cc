// Package flow implements the pipeline stages: Copy, Squash, Disassemble,
// Assemble, Reformat and Conway. Every stage is a csp.Process, validates its
// parameters in its constructor and reports running processes and element
// counts to Prometheus.
package flow
