package httpadapter

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
)

// MultipartBody is a multipart/form-data Body. Files backed by a Reader are
// consumed on the first write, so a MultipartBody is single-use.
type MultipartBody struct {
	// Fields are simple key-value form fields.
	Fields map[string]string
	// Files are file upload fields.
	Files []FileField

	once     sync.Once
	boundary string
}

// FileField represents a file to upload in a multipart request.
type FileField struct {
	// FieldName is the form field name (e.g., "file", "audio").
	FieldName string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the MIME type (e.g., "audio/wav"). If empty, uses application/octet-stream.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader is an alternative to Data for large files.
	Reader io.Reader
}

// ContentType returns multipart/form-data with the body's boundary.
func (m *MultipartBody) ContentType() string {
	return "multipart/form-data; boundary=" + m.getBoundary()
}

// ContentLength is unknown until the parts are written.
func (m *MultipartBody) ContentLength() int64 { return -1 }

// WriteTo encodes the form into w.
func (m *MultipartBody) WriteTo(dst io.Writer) (int64, error) {
	cw := &countingWriter{w: dst}
	w := multipart.NewWriter(cw)
	if err := w.SetBoundary(m.getBoundary()); err != nil {
		return cw.n, err
	}

	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return cw.n, err
		}
	}

	for _, f := range m.Files {
		var part io.Writer
		var err error

		if f.ContentType != "" {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
			header.Set("Content-Type", f.ContentType)
			part, err = w.CreatePart(header)
		} else {
			part, err = w.CreateFormFile(f.FieldName, f.FileName)
		}
		if err != nil {
			return cw.n, err
		}

		if f.Data != nil {
			if _, err := part.Write(f.Data); err != nil {
				return cw.n, err
			}
		} else if f.Reader != nil {
			if _, err := io.Copy(part, f.Reader); err != nil {
				return cw.n, err
			}
		}
	}

	err := w.Close()
	return cw.n, err
}

func (m *MultipartBody) getBoundary() string {
	m.once.Do(func() {
		m.boundary = multipart.NewWriter(io.Discard).Boundary()
	})
	return m.boundary
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// escapeQuotes replaces special characters in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
