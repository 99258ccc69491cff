package memory

import "errors"

// ErrConcurrentUpdate mirrors the Mongo repository's optimistic locking
// failure so callers handle both backends the same way.
var ErrConcurrentUpdate = errors.New("memory: concurrent update detected")
