package request

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// Version is an HTTP protocol version.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("HTTP/%d.%d", v.Major, v.Minor)
}

// Method returns the request method.
func (s *Scope) Method() string {
	return s.msg.Method
}

// SetMethod sets the request method.
func (s *Scope) SetMethod(method string) {
	s.msg.Method = method
}

// URL returns the request target.
func (s *Scope) URL() *url.URL {
	return s.msg.URL
}

// SetURL sets the request target.
func (s *Scope) SetURL(u *url.URL) {
	s.msg.URL = u
}

func (s *Scope) target() string {
	if s.msg.URL == nil {
		return ""
	}
	return s.msg.URL.String()
}

// Version returns the protocol version.
func (s *Scope) Version() Version {
	return Version{Major: s.msg.ProtoMajor, Minor: s.msg.ProtoMinor}
}

// SetVersion sets the protocol version, keeping Proto in sync.
func (s *Scope) SetVersion(v Version) {
	s.msg.ProtoMajor = v.Major
	s.msg.ProtoMinor = v.Minor
	s.msg.Proto = v.String()
}

// Header returns the request headers.
//
// The map is the request's own; changes are visible through [Scope.Request] and the other way around.
func (s *Scope) Header() http.Header {
	return s.msg.Header
}

// SetHeader replaces the request headers.
func (s *Scope) SetHeader(h http.Header) {
	s.msg.Header = h
}

// Body returns the request body.
func (s *Scope) Body() io.ReadCloser {
	return s.msg.Body
}

// SetBody replaces the request body. The content length becomes unknown.
func (s *Scope) SetBody(body io.ReadCloser) {
	s.msg.Body = body
	s.msg.ContentLength = -1
}

// MediaType returns the media type of the Content-Type header without parameters,
// or "" if it is missing or malformed.
func (s *Scope) MediaType() string {
	ct := s.msg.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}

	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

// Query returns a view of the target's query string.
//
// The view is built on every call and does not outlive changes to the target.
func (s *Scope) Query() *QueryView {
	raw := ""
	if s.msg.URL != nil {
		raw = s.msg.URL.RawQuery
	}

	return &QueryView{raw: raw, scope: s}
}

// Content returns a view of the body and its media type.
//
// The view reads the request on every call. Changes made through the view are written back to it.
func (s *Scope) Content() *ContentView {
	return &ContentView{scope: s}
}

func (s *Scope) updateContent(body io.ReadCloser, length int64, contentType string) {
	s.msg.Body = body
	s.msg.ContentLength = length

	if s.msg.Header == nil {
		s.msg.Header = make(http.Header)
	}
	if contentType == "" {
		s.msg.Header.Del("Content-Type")
	} else {
		s.msg.Header.Set("Content-Type", contentType)
	}
}
