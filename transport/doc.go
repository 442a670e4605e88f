// File: transport/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package transport provides the URL-opener collaborators consumed by the
// downloader: an HTTP opener over net/http, a descriptor-backed local file
// opener, and a scheme router combining them. Openers turn an address into
// a readable handle plus a suggested file name; they carry no scheduling
// logic of their own.
package transport
