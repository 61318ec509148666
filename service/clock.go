package service

import "time"

// Clock supplies the timestamps stamped onto entities. Injected so tests
// control time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }

// clockFunc adapts a plain function to Clock. Used by tests.
type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }
