// Package wiretest provides testing utilities for code built on package
// wire: readers and writers that misbehave in controlled ways, frame
// builders, assertion helpers for the error taxonomy, and an in-memory
// client/server Transport pair.
package wiretest
