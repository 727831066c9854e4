package paint

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/h2non/filetype"
)

// ErrUnsupportedFormat is returned for files that are not PNG or JPEG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// sniffLen is the header size filetype needs to match every known type.
const sniffLen = 262

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNGBytes encodes img into memory so a failed encode never touches a file.
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a PNG or JPEG image. The content is sniffed, so the file
// extension does not matter.
func Decode(r io.Reader) (image.Image, string, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("read image header: %w", err)
	}
	if len(head) == 0 {
		return nil, "", fmt.Errorf("%w: empty file", ErrUnsupportedFormat)
	}

	kind, _ := filetype.Match(head)
	var img image.Image
	switch kind.MIME.Value {
	case "image/png":
		img, err = png.Decode(br)
	case "image/jpeg":
		img, err = jpeg.Decode(br)
	default:
		if kind == filetype.Unknown {
			return nil, "", fmt.Errorf("%w: unknown content", ErrUnsupportedFormat)
		}
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", kind.Extension, err)
	}
	return img, kind.Extension, nil
}
