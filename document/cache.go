package document

// renderFunc lays out one chapter at one width.
type renderFunc func(markup string, width int) *Rendered

type cacheKey struct {
	id    string
	width int
}

// Cache memoizes rendered chapters by chapter ID and width. Asking for a
// width other than the one of the cached entries discards all of them.
type Cache struct {
	render  renderFunc
	width   int
	entries map[cacheKey]*Rendered
	misses  int
}

// NewCache creates a cache rendering with hyphenator, which may be nil.
func NewCache(hyphenator Hyphenator) *Cache {
	return newCache(func(markup string, width int) *Rendered {
		return Render(markup, width, hyphenator)
	})
}

func newCache(fn renderFunc) *Cache {
	return &Cache{render: fn, entries: make(map[cacheKey]*Rendered)}
}

// Get returns the layout of ch at width, rendering it on a miss.
func (c *Cache) Get(ch Chapter, width int) *Rendered {
	if width != c.width {
		clear(c.entries)
		c.width = width
	}
	key := cacheKey{id: ch.ID, width: width}
	if r, ok := c.entries[key]; ok {
		return r
	}
	c.misses++
	r := c.render(ch.Markup, width)
	c.entries[key] = r
	return r
}

// Len returns the number of cached layouts.
func (c *Cache) Len() int { return len(c.entries) }

// Misses returns how many times Get had to render.
func (c *Cache) Misses() int { return c.misses }
