// Package fjpool implements a work-stealing fork/join pool: a fixed set
// of worker goroutines, each owning a local double-ended queue, that
// execute Task values submitted by Fork and steal from neighboring
// workers' queues when their own is empty.
//
// It generalizes the flat-channel worker pool pattern (submit a closure,
// any worker picks it up) into the fork/join shape the map/reduce core
// needs: one child is forked onto the pool while its sibling runs inline
// in the current worker, preserving cache locality and bounding queue
// depth to the tree's height rather than its leaf count.
package fjpool
