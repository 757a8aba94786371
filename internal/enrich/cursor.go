package enrich

// Cursor walks a fact list circularly.
type Cursor struct {
	key   string
	items []string
	idx   int
}

// NewCursor starts a cursor at the first fact.
func NewCursor(f Facts) *Cursor {
	return &Cursor{key: f.Key, items: f.Items}
}

// Key returns the "category:name" key the facts belong to.
func (c *Cursor) Key() string { return c.key }

// Current returns the fact under the cursor.
func (c *Cursor) Current() string {
	if len(c.items) == 0 {
		return ""
	}
	return c.items[c.idx]
}

// Next advances the cursor, wrapping to the first fact after the last.
func (c *Cursor) Next() string {
	if len(c.items) == 0 {
		return ""
	}
	c.idx = (c.idx + 1) % len(c.items)
	return c.items[c.idx]
}

// Position returns the 1-based index of the current fact and the total.
func (c *Cursor) Position() (int, int) {
	if len(c.items) == 0 {
		return 0, 0
	}
	return c.idx + 1, len(c.items)
}
