package storage

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
)

// ImageLimit caps avatars and logos at 2 MiB.
const ImageLimit int64 = 2 << 20

const sniffLen = 512

var ErrNotImage = errors.New("file is not a JPEG or PNG image")

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Upload is a single file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// PutImage stores u under dir when its content sniffs as JPEG or PNG. The declared
// content type is ignored.
func PutImage(ctx context.Context, files FileStore, dir string, u Upload, limit int64) (Stored, error) {
	if u.Reader == nil {
		return Stored{}, ErrNotImage
	}
	if limit > 0 && u.Size > limit {
		return Stored{}, ErrTooLarge
	}

	br := bufio.NewReaderSize(u.Reader, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return Stored{}, err
	}
	if !imageTypes[http.DetectContentType(head)] {
		return Stored{}, ErrNotImage
	}

	return files.Put(ctx, dir, u.FileName, br, limit)
}
