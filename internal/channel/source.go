package channel

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/spigell/resume-matcher/internal/validation"
)

// Source is what a channel acquires text from: an Upload, a File on disk or
// Pasted text.
type Source interface {
	source()
}

// Upload is a file picked or dropped by the operator. It is not retained once
// it resolved to text or failed.
type Upload struct {
	Name string
	Size int64
	// Type is the declared media type.
	Type string
	Data []byte
}

// Pasted is text typed or pasted directly into the field.
type Pasted string

// File is a path on disk. It is read as part of the acquisition, so a file
// that cannot be opened fails the channel like any other bad upload.
type File string

func (Upload) source() {}
func (Pasted) source() {}
func (File) source()   {}

func (u Upload) size() int64 {
	if n := int64(len(u.Data)); n > u.Size {
		return n
	}
	return u.Size
}

// FromFile builds an Upload from a file on disk. The declared type is sniffed
// from the content. Files above the size limit are not read, so the channel
// rejects them without loading them into memory.
func FromFile(path string) (Upload, error) {
	file, err := os.Open(path)
	if err != nil {
		return Upload{}, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return Upload{}, err
	}
	if stat.IsDir() {
		return Upload{}, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return Upload{}, fmt.Errorf("detect type of %s: %w", path, err)
	}

	upload := Upload{
		Name: filepath.Base(path),
		Size: stat.Size(),
		Type: mtype.String(),
	}

	if !validation.AcceptableSize(upload.Size) {
		return upload, nil
	}

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return Upload{}, err
	}

	upload.Data, err = io.ReadAll(file)
	if err != nil {
		return Upload{}, fmt.Errorf("read %s: %w", path, err)
	}

	return upload, nil
}

// decodeText reads raw bytes as UTF-8. A byte order mark is honoured and
// stripped; invalid sequences become U+FFFD.
func decodeText(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(decoded), nil
}
