// Package model defines the value types shared by the signup validation core:
// the fixed set of field names, the read-only FormSnapshot supplied by a
// presentation adapter, per-field ValidationOutcome values (with an optional
// password Strength), and the SubmissionState lifecycle (idle, submitting,
// succeeded). Nothing in this package mutates a snapshot once it is built.
package model
