// File: control/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package control exposes in-process operational state: a thread-safe
// counter registry fed by the downloader (transfers started, queued,
// promoted, completed, failed, cancelled, bytes moved).
package control
