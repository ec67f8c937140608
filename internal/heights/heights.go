// Package heights holds the node's latest known chain height as a
// single-writer, multi-reader snapshot cell.
package heights

import "sync/atomic"

// Cell is an atomically updated height snapshot. The event processor's block
// follower is the only writer; handlers read the latest value without
// blocking. Heights are monotonically non-decreasing in practice, but the
// cell does not enforce that.
type Cell struct {
	height atomic.Uint64
}

// NewCell returns a cell starting at the given height.
func NewCell(height uint64) *Cell {
	c := &Cell{}
	c.height.Store(height)
	return c
}

// Set records a newly observed height.
func (c *Cell) Set(height uint64) {
	c.height.Store(height)
}

// Latest returns the most recently written height.
func (c *Cell) Latest() uint64 {
	return c.height.Load()
}
