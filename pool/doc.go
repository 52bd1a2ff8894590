// Package pool
// Author: momentics <momentics@gmail.com>
//
// Buffer recycling for stagebuf consumers that churn through many
// short-lived staging buffers (one per connection or per request).
// See bufferpool.go for the free-list policy.
package pool
