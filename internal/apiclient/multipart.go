package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// MultipartBody is an opaque multipart/form-data payload. The client sends it untouched
// and takes the Content-Type (with its boundary) from the payload itself.
type MultipartBody struct {
	buf         bytes.Buffer
	writer      *multipart.Writer
	contentType string
	fields      []string
	files       []string
	closed      bool
}

// NewMultipartBody starts an empty payload.
func NewMultipartBody() *MultipartBody {
	b := &MultipartBody{}
	b.writer = multipart.NewWriter(&b.buf)
	b.contentType = b.writer.FormDataContentType()
	return b
}

// AddField appends a text field.
func (b *MultipartBody) AddField(name, value string) error {
	if b.closed {
		return fmt.Errorf("multipart body already finalized")
	}
	if err := b.writer.WriteField(name, value); err != nil {
		return fmt.Errorf("write field %s: %w", name, err)
	}
	b.fields = append(b.fields, name)
	return nil
}

// AddFile appends a binary file part.
func (b *MultipartBody) AddFile(name, filename string, content io.Reader) error {
	if b.closed {
		return fmt.Errorf("multipart body already finalized")
	}
	part, err := b.writer.CreateFormFile(name, filename)
	if err != nil {
		return fmt.Errorf("create file part %s: %w", name, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("write file part %s: %w", name, err)
	}
	b.files = append(b.files, name)
	return nil
}

// Close writes the trailing boundary. Further writes fail.
func (b *MultipartBody) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.writer.Close()
}

// ContentType returns "multipart/form-data; boundary=...".
func (b *MultipartBody) ContentType() string { return b.contentType }

// Fields lists the text field names in write order.
func (b *MultipartBody) Fields() []string { return append([]string(nil), b.fields...) }

// Files lists the file field names in write order.
func (b *MultipartBody) Files() []string { return append([]string(nil), b.files...) }

// reader finalizes the payload and returns its bytes as a fresh reader.
func (b *MultipartBody) reader() (io.Reader, int64, error) {
	if err := b.Close(); err != nil {
		return nil, 0, fmt.Errorf("close multipart body: %w", err)
	}
	return bytes.NewReader(b.buf.Bytes()), int64(b.buf.Len()), nil
}
