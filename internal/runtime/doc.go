// Package runtime evaluates survey logic rules against an answer set.
//
// Evaluation is pure: a compiled Program plus an answer map fully determine every
// result, and nothing is cached between calls.
package runtime
