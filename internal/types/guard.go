package types

import "github.com/sasha-s/go-deadlock"

// guardMutex asserts the single-writer discipline spec.md §5 requires: a
// Pool is owned by exactly one compilation unit and must never be touched
// from more than one goroutine at a time. go-deadlock behaves like
// sync.Mutex but panics with a goroutine-id trace on contention instead of
// silently racing, so a caller that accidentally shares a Pool across
// goroutines fails loudly in tests rather than corrupting the intern table.
type guardMutex = deadlock.Mutex
