package timeutil

import "time"

var nowFunc = time.Now

// Now returns the current time. Backup naming and scheduling read the clock
// through here so tests can pin it.
func Now() time.Time {
	return nowFunc()
}

// SetNowFunc overrides the function used by Now. Passing nil resets it.
func SetNowFunc(fn func() time.Time) {
	if fn == nil {
		nowFunc = time.Now
		return
	}
	nowFunc = fn
}
