// Package pool
// Author: momentics <momentics@gmail.com>
//
// Small allocation helpers for hioload-dl: a thread-safe unique-id pool used
// to key periodic reactor callbacks, and a recycling byte pool sized for
// transfer read chunks. See idpool.go and bytepool.go.
package pool
