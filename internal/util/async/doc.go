// Package async provides utilities for bounded parallel execution.
//
// [Collect] maps a slice through a function and keeps results in input
// order. It bounds the number of goroutines running at once and never
// cancels sibling work when one item fails. It is used to probe cluster
// hosts concurrently.
package async
