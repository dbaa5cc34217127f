package svgrender

// Cached is a lazily computed value, invalidated explicitly
// when the data it is derived from changes.
type Cached[T any] struct {
	value T
	valid bool
}

// Get returns the cached value, calling `compute` if needed.
func (c *Cached[T]) Get(compute func() T) T {
	if !c.valid {
		c.value = compute()
		c.valid = true
	}
	return c.value
}

// Invalidate marks the value as dirty.
func (c *Cached[T]) Invalidate() {
	var zero T
	c.value, c.valid = zero, false
}

// Valid returns true if the value is up to date.
func (c *Cached[T]) Valid() bool { return c.valid }
