package photo

import (
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// MaxSize is the largest accepted verification photo (5 MB).
const MaxSize = 5 << 20

var (
	ErrEmpty           = errors.New("photo payload is empty")
	ErrTooLarge        = errors.New("photo exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("photo is not a supported image type")
)

// accepted content types, detected by content rather than filename
var allowedExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Payload is a validated verification photo ready for blob upload.
type Payload struct {
	Data []byte
	MIME string
	Ext  string
}

// Validate sniffs the payload's real content type and enforces the
// size cap. It performs no I/O so callers can test it without storage.
func Validate(data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, ErrEmpty
	}
	if len(data) > MaxSize {
		return Payload{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedExts[mtype.String()]
	if !ok {
		return Payload{}, fmt.Errorf("%w: detected %s", ErrUnsupportedType, mtype.String())
	}

	return Payload{Data: data, MIME: mtype.String(), Ext: ext}, nil
}

// FromReader reads at most MaxSize+1 bytes from r and validates the
// result. Used by handlers to bound multipart uploads.
func FromReader(r io.Reader) (Payload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return Payload{}, fmt.Errorf("read photo: %w", err)
	}
	return Validate(data)
}
