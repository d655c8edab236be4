// Package media stores uploaded post illustrations as opaque blobs on disk
// and validates that uploads are images in a supported format. No resizing or
// transformation happens here.
package media

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/models"

	"github.com/google/uuid"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// AllowedExtensions is the fixed allow-list of accepted illustration formats.
// The enumeration order is part of the rejection message contract, so it must
// stay stable.
var AllowedExtensions = []string{
	"blp", "bmp", "dib", "bufr", "cur", "pcx", "dcx", "dds", "ps", "eps",
	"fit", "fits", "fli", "flc", "ftc", "ftu", "gbr", "gif", "grib", "h5",
	"hdf", "png", "apng", "jp2", "j2k", "jpc", "jpf", "jpx", "j2c", "icns",
	"ico", "im", "iim", "tif", "tiff", "jfif", "jpe", "jpg", "jpeg", "mpg",
	"mpeg", "mpo", "msp", "palm", "pcd", "pdf", "pxr", "psd", "bw", "rgb",
	"rgba", "sgi", "ras", "tga", "icb", "vda", "vst", "webp", "wmf", "emf",
	"xbm", "xpm",
}

// decodableExtensions are the formats the registered Go decoders understand.
// For these the content is decoded to catch corrupt or mislabeled files;
// the rest get at most a signature check (see magicPrefixes).
var decodableExtensions = map[string]bool{
	"png": true, "gif": true, "bmp": true, "dib": true,
	"jpg": true, "jpeg": true, "jpe": true, "jfif": true,
	"tif": true, "tiff": true, "webp": true,
}

// magicPrefixes covers the common formats on the allow-list that have no
// registered decoder but do carry a recognizable signature. Files in these
// formats must start with one of the listed prefixes; allow-listed formats
// absent here are admitted on extension and non-empty content alone.
var magicPrefixes = map[string][][]byte{
	"psd":  {[]byte("8BPS")},
	"pdf":  {[]byte("%PDF")},
	"ps":   {[]byte("%!")},
	"eps":  {[]byte("%!"), {0xC5, 0xD0, 0xD3, 0xC6}},
	"ico":  {{0x00, 0x00, 0x01, 0x00}},
	"cur":  {{0x00, 0x00, 0x02, 0x00}},
	"icns": {[]byte("icns")},
	"xpm":  {[]byte("/* XPM */")},
}

var allowedSet = func() map[string]bool {
	m := make(map[string]bool, len(AllowedExtensions))
	for _, ext := range AllowedExtensions {
		m[ext] = true
	}
	return m
}()

const invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// Upload is an inbound illustration file.
type Upload struct {
	Filename string
	Content  []byte
}

// Store writes validated uploads under a content directory and returns the
// public media path the post references.
type Store struct {
	dir string
}

// NewStore creates a media store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// ValidateImage checks the upload against the format allow-list and, for
// formats the decoders understand, verifies the content actually decodes.
// Undecodable formats with a known signature must at least start with it.
// Rejections are field-level validation errors; the extension message
// enumerates the full supported set.
func ValidateImage(up *Upload) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(up.Filename), "."))
	if !allowedSet[ext] {
		return models.NewFieldValidationError("image", fmt.Sprintf(
			"File extension %q is not allowed. Allowed extensions are: %s.",
			ext, strings.Join(AllowedExtensions, ", ")))
	}
	if len(up.Content) == 0 {
		return models.NewFieldValidationError("image", invalidImageMessage)
	}
	if decodableExtensions[ext] {
		if _, _, err := image.Decode(bytes.NewReader(up.Content)); err != nil {
			return models.NewFieldValidationError("image", invalidImageMessage)
		}
	}
	if prefixes, ok := magicPrefixes[ext]; ok && !hasMagicPrefix(up.Content, prefixes) {
		return models.NewFieldValidationError("image", invalidImageMessage)
	}
	return nil
}

func hasMagicPrefix(content []byte, prefixes [][]byte) bool {
	for _, prefix := range prefixes {
		if bytes.HasPrefix(content, prefix) {
			return true
		}
	}
	return false
}

// Save validates the upload and persists it under <dir>/posts/ with a unique
// name, returning the path to store on the post.
func (s *Store) Save(up *Upload) (string, error) {
	if err := ValidateImage(up); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(up.Filename))
	name := uuid.NewString() + ext
	dir := filepath.Join(s.dir, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), up.Content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	return "posts/" + name, nil
}

// Dir returns the store's root directory, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}
