// File: sink/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package sink provides ready-made SinkFactory implementations: local files
// under a target directory, and objects in a gocloud.dev blob bucket. Both
// derive the final name from the opener's suggestion, reduced to a bare
// file name.
package sink
