package sqlitekit

// AuthorizerResult is the verdict an Authorizer returns for one access
// check during statement compilation.
type AuthorizerResult int

const (
	AuthOK AuthorizerResult = iota
	AuthDeny
	AuthIgnore
)

// Authorizer is C5's delegate, consulted once per referenced object while
// SQLite compiles a statement. action is one of the engine's
// SQLITE_{CREATE,DROP,READ,INSERT,...}_* codes; arg1/arg2 carry
// action-specific names (e.g. table and column for SQLITE_READ); dbName is
// the schema the object lives in; triggerName is non-empty when the
// access happens inside a trigger or view body.
type Authorizer interface {
	Authorize(action int, arg1, arg2, dbName, triggerName string) AuthorizerResult
}

// WithAuthorizer swaps in a for the duration of body and restores whatever
// authorizer (possibly nil) was set before, on every exit path: normal
// return, error, or panic (§4.5, §9 "scoped resources").
func (c *Connection) WithAuthorizer(a Authorizer, body func() error) (err error) {
	c.assertOwner()
	prev := c.authorizer
	c.authorizer = a
	defer func() {
		c.authorizer = prev
		if r := recover(); r != nil {
			panic(r)
		}
	}()
	return body()
}
