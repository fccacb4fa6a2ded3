package request

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/sectrean/scope-kit/internal/errors"
)

// ErrUnsupportedMediaType is returned when the body cannot be decoded as requested.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ContentView reads and replaces the request body together with its media type.
//
// A ContentView holds no data of its own. The body and Content-Type are read from the
// request on every call, and every change is written back to it.
type ContentView struct {
	scope *Scope
}

// MediaType returns the media type without parameters, or "" if there is none.
func (v *ContentView) MediaType() string {
	return v.scope.MediaType()
}

// Scope returns the request scope the view belongs to.
func (v *ContentView) Scope() *Scope {
	return v.scope
}

// Bytes reads the whole body.
//
// The body is put back on the request so that it can be read again.
func (v *ContentView) Bytes() ([]byte, error) {
	body := v.scope.msg.Body
	if body == nil {
		return nil, nil
	}

	data, err := io.ReadAll(body)
	closeErr := body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if closeErr != nil {
		return nil, errors.Wrap(closeErr, "close body")
	}

	v.scope.updateContent(io.NopCloser(bytes.NewReader(data)), int64(len(data)),
		v.scope.msg.Header.Get("Content-Type"))

	return data, nil
}

// Set replaces the body and the Content-Type of the request.
func (v *ContentView) Set(contentType string, body []byte) {
	v.scope.updateContent(io.NopCloser(bytes.NewReader(body)), int64(len(body)), contentType)
}

// DecodeJSON decodes a JSON body into dst.
//
// It returns [ErrUnsupportedMediaType] unless the media type is application/json
// or a +json type.
func (v *ContentView) DecodeJSON(dst any) error {
	mt := v.MediaType()
	if mt != "application/json" && !strings.HasSuffix(mt, "+json") {
		return errors.Wrapf(ErrUnsupportedMediaType, "decode json: %q", mt)
	}

	data, err := v.Bytes()
	if err != nil {
		return errors.Wrap(err, "decode json")
	}

	return errors.Wrap(json.Unmarshal(data, dst), "decode json")
}

// EncodeJSON replaces the body with src encoded as JSON.
func (v *ContentView) EncodeJSON(src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return errors.Wrap(err, "encode json")
	}

	v.Set("application/json", data)
	return nil
}
