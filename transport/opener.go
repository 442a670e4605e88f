// File: transport/opener.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/momentics/hioload-dl/api"
)

// SchemeOpener routes addresses to registered openers by URL scheme.
type SchemeOpener struct {
	openers map[string]api.Opener
}

// NewSchemeOpener returns an empty router.
func NewSchemeOpener() *SchemeOpener {
	return &SchemeOpener{openers: make(map[string]api.Opener)}
}

// Default returns a router covering http, https, file and bare local paths.
// client applies to the HTTP schemes; nil means http.DefaultClient.
func Default(client *http.Client) *SchemeOpener {
	s := NewSchemeOpener()
	h := &HTTPOpener{Client: client}
	s.Register("http", h)
	s.Register("https", h)
	s.Register("file", FileOpener{})
	s.Register("", FileOpener{})
	return s
}

// Register maps a scheme (lower-cased) to an opener. The empty scheme
// handles plain filesystem paths.
func (s *SchemeOpener) Register(scheme string, o api.Opener) {
	s.openers[strings.ToLower(scheme)] = o
}

// Open dispatches on the address scheme.
func (s *SchemeOpener) Open(address string) (api.Handle, string, error) {
	scheme := ""
	if u, err := url.Parse(address); err == nil {
		scheme = strings.ToLower(u.Scheme)
	}
	o := s.openers[scheme]
	if o == nil {
		return nil, "", fmt.Errorf("open %s: no opener for scheme %q", address, scheme)
	}
	return o.Open(address)
}
