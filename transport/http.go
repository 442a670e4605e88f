// File: transport/http.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/momentics/hioload-dl/api"
)

// HTTPOpener resolves http and https addresses.
type HTTPOpener struct {
	// Client issues the requests. nil means http.DefaultClient.
	Client *http.Client
}

// Open performs a GET and returns the response body as the transfer handle.
// The body exposes no raw descriptor, so these transfers are driven through
// the reactor's periodic path.
func (o *HTTPOpener) Open(address string) (api.Handle, string, error) {
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(address)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("get %s: unexpected status %s", address, resp.Status)
	}
	return &httpHandle{body: resp.Body, length: resp.ContentLength}, suggestedName(resp, address), nil
}

type httpHandle struct {
	body   io.ReadCloser
	length int64
}

func (h *httpHandle) Read(p []byte) (int, error) { return h.body.Read(p) }
func (h *httpHandle) Close() error               { return h.body.Close() }

// Length reports the Content-Length when the server sent one.
func (h *httpHandle) Length() (int64, bool) { return h.length, h.length >= 0 }

// suggestedName derives a file name for the response: the filename parameter
// of Content-Disposition when present, else the URL path basename.
func suggestedName(resp *http.Response, address string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return basenameOf(address)
}

// basenameOf extracts the last URL path element, with a stable fallback for
// addresses that end in a slash or have no path at all.
func basenameOf(address string) string {
	if u, err := url.Parse(address); err == nil && u.Path != "" {
		if name := path.Base(u.Path); name != "." && name != "/" {
			return name
		}
	}
	return "download"
}
