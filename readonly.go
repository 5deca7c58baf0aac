package sqlitekit

// BeginReadOnly increments the read-only nesting depth and, on the 0→1
// transition, toggles PRAGMA query_only = 1 through the internal
// statement cache (§4.7). A connection opened with Config.ReadOnly already
// bypasses write access at the engine level, so this is a no-op there.
func (c *Connection) BeginReadOnly() error {
	c.assertOwner()
	if c.config.ReadOnly {
		return nil
	}
	c.readOnlyDepth++
	if c.readOnlyDepth == 1 {
		if _, err := c.execInternal("PRAGMA query_only = 1"); err != nil {
			c.readOnlyDepth--
			return err
		}
	}
	return nil
}

// EndReadOnly decrements the depth and, on the 1→0 transition, toggles
// PRAGMA query_only back to 0.
func (c *Connection) EndReadOnly() error {
	c.assertOwner()
	if c.config.ReadOnly || c.readOnlyDepth == 0 {
		return nil
	}
	c.readOnlyDepth--
	if c.readOnlyDepth == 0 {
		_, err := c.execInternal("PRAGMA query_only = 0")
		return err
	}
	return nil
}

// ReadOnly runs body with read-only access engaged, releasing it on every
// exit path (§9 "scoped resources").
func (c *Connection) ReadOnly(body func() error) (err error) {
	if err := c.BeginReadOnly(); err != nil {
		return err
	}
	defer func() {
		r := recover()
		if derr := c.EndReadOnly(); derr != nil && err == nil && r == nil {
			err = derr
		}
		if r != nil {
			panic(r)
		}
	}()
	return body()
}
