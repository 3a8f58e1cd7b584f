package httpadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Body is an engine-agnostic request body. The adapter asks it for its media
// type and declared length, then lets it write its bytes into a sink.
type Body interface {
	// ContentType returns the media type of the body, or "" if none.
	ContentType() string
	// ContentLength returns the number of bytes WriteTo will produce, or -1 if unknown.
	ContentLength() int64
	// WriteTo streams the body into w.
	WriteTo(w io.Writer) (int64, error)
}

// Common content types.
const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeText = "text/plain; charset=utf-8"
)

type bytesBody struct {
	contentType string
	data        []byte
}

// BytesBody returns a Body over a fixed byte slice.
func BytesBody(contentType string, data []byte) Body {
	return &bytesBody{contentType: contentType, data: data}
}

// StringBody returns a Body over s.
func StringBody(contentType, s string) Body {
	return &bytesBody{contentType: contentType, data: []byte(s)}
}

// JSONBody encodes v as JSON.
func JSONBody(v any) (Body, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("httpadapter: encode json body: %w", err)
	}
	return &bytesBody{contentType: ContentTypeJSON, data: data}, nil
}

// FormBody encodes values as an urlencoded form.
func FormBody(values url.Values) Body {
	return &bytesBody{contentType: ContentTypeForm, data: []byte(values.Encode())}
}

func (b *bytesBody) ContentType() string  { return b.contentType }
func (b *bytesBody) ContentLength() int64 { return int64(len(b.data)) }

func (b *bytesBody) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.data)
	return int64(n), err
}

// maxBodyPrealloc bounds how much of a declared length is reserved up front.
// The declared length is only checked against what the body actually writes.
const maxBodyPrealloc = 64 << 10

// mirroredBody is a Body rendered into the shape net/http expects: a
// replayable reader plus the headers describing it.
type mirroredBody struct {
	contentType string
	length      int64
	data        []byte
}

// mirrorBody drains b once. A body that writes a different number of bytes
// than it declares is rejected before anything reaches the wire.
func mirrorBody(b Body) (*mirroredBody, error) {
	declared := b.ContentLength()

	var buf bytes.Buffer
	if declared > 0 {
		buf.Grow(int(min(declared, maxBodyPrealloc)))
	}
	written, err := b.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("write body: %w", err)
	}
	if declared >= 0 && written != declared {
		return nil, fmt.Errorf("body wrote %d bytes but declared %d", written, declared)
	}

	return &mirroredBody{
		contentType: strings.TrimSpace(b.ContentType()),
		length:      declared,
		data:        buf.Bytes(),
	}, nil
}

// reader returns a fresh reader over the mirrored bytes.
func (m *mirroredBody) reader() io.Reader {
	return bytes.NewReader(m.data)
}

// apply describes the body on req. The body's own media type wins over any
// Content-Type header; an unknown length is sent chunked.
func (m *mirroredBody) apply(req *http.Request) {
	if m.contentType != "" {
		req.Header.Set("Content-Type", m.contentType)
	}
	if m.length < 0 {
		req.ContentLength = -1
		return
	}
	req.ContentLength = m.length
	if m.length == 0 {
		req.Body = http.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
	}
}
