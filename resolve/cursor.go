// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

// Cursor tracks the highlighted row of the picker list. Index -1 means no
// row is highlighted and a commit applies to the raw query text. The index
// stays within [-1, size-1] no matter how often the caller steps past an end.
type Cursor struct {
	index int
	size  int
}

// NewCursor returns a cursor over an empty list with nothing highlighted.
func NewCursor() *Cursor {
	return &Cursor{index: -1}
}

// Reset points the cursor at no row and adopts the new list size. Called
// whenever the merged list is rebuilt.
func (c *Cursor) Reset(size int) {
	c.index = -1
	c.size = size
}

// Index returns the highlighted row, or -1.
func (c *Cursor) Index() int {
	return c.index
}

// Size returns the length of the list the cursor ranges over.
func (c *Cursor) Size() int {
	return c.size
}

// Next moves the highlight down one row, stopping at the last row.
func (c *Cursor) Next() int {
	if c.index < c.size-1 {
		c.index++
	}

	return c.index
}

// Previous moves the highlight up one row, stopping at -1.
func (c *Cursor) Previous() int {
	if c.index > -1 {
		c.index--
	}

	return c.index
}
