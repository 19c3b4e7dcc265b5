package domain

import "sort"

// Checkpoints maps a source logical name to its last consumed cursor.
type Checkpoints map[string]Cursor

// Get returns the cursor stored for name, or zero when absent.
func (c Checkpoints) Get(name string) Cursor {
	if c == nil {
		return 0
	}
	return c[name]
}

// Set stores the cursor for name.
func (c Checkpoints) Set(name string, cursor Cursor) {
	c[name] = cursor
}

// Merge copies every entry of other into c, overwriting existing keys.
func (c Checkpoints) Merge(other Checkpoints) {
	for k, v := range other {
		c[k] = v
	}
}

// Clone returns an independent copy.
func (c Checkpoints) Clone() Checkpoints {
	out := make(Checkpoints, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Names returns the source names in sorted order.
func (c Checkpoints) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NextCursor returns the checkpoint value to persist after a crawl.
// It is the largest cursor seen among the newly fetched records; when the
// crawl produced nothing the previous value is carried forward.
func NextCursor(prev Cursor, c *Collection) Cursor {
	if c.Len() == 0 {
		return prev
	}
	if c.MaxCursor < prev {
		return prev
	}
	return c.MaxCursor
}
