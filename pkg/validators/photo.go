package validators

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
	ErrTooManyFiles        = errors.New("too many files")
)

const maxFileNameSize = 255

type PhotoRules struct {
	MaxSize      int64
	MaxFiles     int
	AllowedTypes []string
}

// PhotosValidator checks the batch as a whole before any file is opened
func PhotosValidator(files []*multipart.FileHeader, r *PhotoRules) (int, error) {
	if r.MaxFiles > 0 && len(files) > r.MaxFiles {
		return http.StatusBadRequest, fmt.Errorf("%w, at most %d photos are allowed", ErrTooManyFiles, r.MaxFiles)
	}

	return 0, nil
}

// PhotoValidator validates a single uploaded photo and returns it opened
// and rewound. The detected MIME type is returned alongside so callers
// don't need to sniff it again.
func PhotoValidator(fh *multipart.FileHeader, r *PhotoRules) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, "", ErrFileNameTooLong
	}

	// Header size is easy to spoof but lets legit clients fail fast
	if fh.Size > r.MaxSize {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	if !allowed(mime, r.AllowedTypes) {
		f.Close()
		return http.StatusBadRequest, nil, "", ErrFileTypeUnsupported
	}

	// And now check the real size to avoid malicious clients
	n, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	if n > r.MaxSize {
		f.Close()
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	return 0, f, mime.String(), nil
}

func allowed(m *mimetype.MIME, types []string) bool {
	// No explicit list means any image
	if len(types) == 0 {
		for ; m != nil; m = m.Parent() {
			if strings.HasPrefix(m.String(), "image/") {
				return true
			}
		}
		return false
	}

	return slices.ContainsFunc(types, func(t string) bool { return m.Is(t) })
}
