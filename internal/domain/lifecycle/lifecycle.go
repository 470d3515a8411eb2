// Package lifecycle holds the shared settings of component start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds the work done by a single start or stop hook.
const DefaultTimeout = 10 * time.Second
