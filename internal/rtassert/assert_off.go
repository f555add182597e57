//go:build !rtdebug

package rtassert

// Enabled reports whether debug assertions are compiled in.
const Enabled = false

// Check is a no-op in release builds: the condition is not even evaluated
// for side effects beyond what the caller already computed to pass it in.
func Check(cond bool, msg string) {}
