/*
Package session holds the stateful side of survey answering.

A Driver owns one respondent's answers and cursor. Every answer change re-runs
traversal, clamps the cursor into the new visible list and schedules a debounced
save through an AutoSaver. The Manager serializes access to stored progress across
goroutines and, with a DistributedLocker, across replicas.
*/
package session
