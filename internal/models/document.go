package models

import (
	"fmt"
	"io"
	"mime/multipart"
)

// DocumentFile is a file picked in the add-patient upload control.
type DocumentFile struct {
	Filename string
	Size     int64  // declared size
	Content  []byte // may hold only the first readLimit bytes of an oversize file
}

// Empty reports whether no file was selected.
func (f *DocumentFile) Empty() bool {
	return f == nil || (f.Filename == "" && f.Size == 0)
}

// DocumentFromHeader reads an uploaded multipart file. At most readLimit bytes are
// kept in memory; Size always carries the declared size so oversize uploads can be
// rejected without buffering them.
func DocumentFromHeader(header *multipart.FileHeader, readLimit int64) (*DocumentFile, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, readLimit))
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}

	return &DocumentFile{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  content,
	}, nil
}
