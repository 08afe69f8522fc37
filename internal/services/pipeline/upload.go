package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"
)

// ErrFileSave is returned when an upload cannot be written to the upload
// directory. No record is produced for such a file.
var ErrFileSave = errors.New("failed to save uploaded file")

// Upload is one file of a multipart batch.
// Open is called once, by the worker that processes the file.
type Upload struct {
	FileName string
	Open     func() (io.ReadCloser, error)
}

// NewUpload wraps in-memory content as an Upload.
func NewUpload(fileName string, data []byte) Upload {
	return Upload{
		FileName: fileName,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename turns a client-supplied name into a safe flat file name.
// Unicode is folded to ASCII (NFKD, non-ASCII dropped), path separators and
// whitespace runs become "_", anything outside [A-Za-z0-9_.-] is removed and
// leading or trailing dots and underscores are trimmed. The result may be
// empty, for example for "../..".
func SanitizeFilename(name string) string {
	folded := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range folded {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}

	ascii := strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	joined := strings.Join(strings.Fields(ascii), "_")
	cleaned := unsafeFilenameChars.ReplaceAllString(joined, "")
	return strings.Trim(cleaned, "._")
}

// saveUpload writes the upload to dir under its sanitized name, overwriting
// any earlier file of the same name. It returns the stored name, the path and
// the sniffed content type.
func saveUpload(dir string, up Upload) (name, path, contentType string, err error) {
	name = SanitizeFilename(up.FileName)
	if name == "" {
		return "", "", "", fmt.Errorf("%w: %q has no usable file name", ErrFileSave, up.FileName)
	}
	if up.Open == nil {
		return "", "", "", fmt.Errorf("%w: %s has no content", ErrFileSave, name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrFileSave, err)
	}

	src, err := up.Open()
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrFileSave, err)
	}
	defer src.Close()

	path = filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrFileSave, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", "", "", fmt.Errorf("%w: %v", ErrFileSave, err)
	}
	if err := dst.Close(); err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrFileSave, err)
	}

	// Content sniffing is informational; a failure here doesn't fail the file.
	contentType = "application/octet-stream"
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}

	return name, path, contentType, nil
}
