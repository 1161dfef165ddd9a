package cursor

import "fmt"

// Guard remembers the offset a cursor had before PushSeek moved it.
//
// Guards nest: they must be popped in the reverse order they were pushed.
// The usual pattern is
//
//	g, err := c.PushSeek(blockStart)
//	if err != nil {
//	    return err
//	}
//	defer g.Pop()
type Guard struct {
	c      *Cursor
	saved  int
	level  int
	popped bool
}

// PushSeek saves the current offset and jumps to offset.
func (c *Cursor) PushSeek(offset int) (*Guard, error) {
	saved := c.offset
	if err := c.Seek(offset); err != nil {
		return nil, err
	}
	c.depth++
	return &Guard{c: c, saved: saved, level: c.depth}, nil
}

// Depth returns the number of guards that have not been popped.
func (c *Cursor) Depth() int {
	return c.depth
}

// Pop restores the offset saved by PushSeek. Calling Pop twice is a no-op.
// Popping a guard while a guard pushed after it is still live panics.
func (g *Guard) Pop() {
	if g.popped {
		return
	}
	if g.c.depth != g.level {
		panic(fmt.Sprintf("cursor: guard popped at depth %d, pushed at %d", g.c.depth, g.level))
	}
	g.c.offset = g.saved
	g.c.depth--
	g.popped = true
}
