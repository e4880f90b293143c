package requests

import (
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"promptforge/internal/domain/file"
)

// UploadsFromForm collects the files posted under any of the given multipart
// field names. Non multipart requests carry no uploads.
func UploadsFromForm(c *gin.Context, fields ...string) ([]file.Upload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	var headers []*multipart.FileHeader
	for _, field := range fields {
		headers = append(headers, form.File[field]...)
	}
	return lo.Map(headers, func(fh *multipart.FileHeader, _ int) file.Upload {
		return UploadFromHeader(fh)
	}), nil
}

func UploadFromHeader(fh *multipart.FileHeader) file.Upload {
	return file.Upload{
		Name:     fh.Filename,
		MimeType: mimeTypeOf(fh),
		Size:     fh.Size,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func mimeTypeOf(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
