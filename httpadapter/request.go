package httpadapter

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request describes an outbound HTTP request. The adapter never mutates it.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE, etc). Defaults to GET.
	Method string
	// URL is the absolute request URL.
	URL string
	// Headers are request-specific headers. They override default headers
	// with the same (case-insensitive) key.
	Headers map[string]string
	// Body is the optional request body.
	Body Body
}

// Response is the result of a successful HTTP exchange. Body is streamed from
// the connection; the caller must read it to EOF or Close it.
type Response struct {
	// Request is the request this response answers.
	Request *Request
	// Body is the response body, positioned at its first byte.
	Body io.ReadCloser
	// Headers are the response headers.
	Headers http.Header
	// StatusCode is the HTTP status code.
	StatusCode int
	// Message is the status reason phrase, e.g. "OK".
	Message string
	// Protocol is the upper-case protocol label, e.g. "HTTP/1.1".
	Protocol string
	// ContentLength is the length reported by the server, or -1 if unknown.
	ContentLength int64
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Header returns the first value of the named response header.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

// ReadAll reads the remaining body and closes it.
func (r *Response) ReadAll() ([]byte, error) {
	defer func() { _ = r.Body.Close() }()
	return io.ReadAll(r.Body)
}

// Close releases the underlying connection.
func (r *Response) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

func newResponse(req *Request, resp *http.Response) *Response {
	return &Response{
		Request:       req,
		Body:          &responseBody{rc: resp.Body},
		Headers:       resp.Header,
		StatusCode:    resp.StatusCode,
		Message:       statusMessage(resp),
		Protocol:      protocolLabel(resp),
		ContentLength: resp.ContentLength,
	}
}

// statusMessage strips the numeric code from the engine's "200 OK" status line.
func statusMessage(resp *http.Response) string {
	msg := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return msg
}

func protocolLabel(resp *http.Response) string {
	if resp.Proto != "" {
		return strings.ToUpper(resp.Proto)
	}
	return fmt.Sprintf("HTTP/%d.%d", resp.ProtoMajor, resp.ProtoMinor)
}

// responseBody reports mid-stream failures as IOError.
type responseBody struct {
	rc io.ReadCloser
}

func (b *responseBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if err != nil && err != io.EOF {
		err = newIOError("read body", err)
	}
	return n, err
}

func (b *responseBody) Close() error {
	return b.rc.Close()
}

// discardBody drains a bounded amount of an unwanted body so the connection
// can be reused, then closes it.
func discardBody(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, rc, maxDiscardBytes)
	_ = rc.Close()
}

const maxDiscardBytes = 64 << 10
