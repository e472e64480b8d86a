// Package storage keeps uploaded media on local disk or Cloudinary.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"service-marketplace/internal/data/entity"

	"github.com/gabriel-vasile/mimetype"
)

// AttachmentsFolder holds booking media.
const AttachmentsFolder = "attachments"

// ProfilePicturesFolder holds user avatars.
const ProfilePicturesFolder = "profile-pictures"

// ErrUnsupportedType is returned for content that is not image, video or audio.
var ErrUnsupportedType = errors.New("unsupported file type")

type FileStore interface {
	// Store persists r under folder and returns the reference to keep.
	Store(ctx context.Context, folder, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, folder, ref string) error
	PublicURL(folder, ref string) string
}

// Classified is an upload after its content has been sniffed.
type Classified struct {
	MimeType string
	FileType entity.FileType
	Body     io.Reader
}

var extensionTypes = map[string]entity.FileType{
	".jpg": entity.FileTypeImage, ".jpeg": entity.FileTypeImage,
	".png": entity.FileTypeImage, ".webp": entity.FileTypeImage,
	".mp4": entity.FileTypeVideo, ".mov": entity.FileTypeVideo,
	".mp3": entity.FileTypeAudio, ".wav": entity.FileTypeAudio, ".m4a": entity.FileTypeAudio,
}

// Classify sniffs the first bytes of r. When sniffing is inconclusive the
// file extension decides. The returned Body replays the sniffed bytes.
func Classify(name string, r io.Reader) (*Classified, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read file header: %w", err)
	}
	head = head[:n]

	mime := mimetype.Detect(head)
	fileType, ok := fileTypeOf(mime.String())
	if !ok {
		ext := strings.ToLower(filepath.Ext(name))
		fileType, ok = extensionTypes[ext]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedType)
		}
		if byExt := mimetype.Lookup(mimeForExt(ext)); byExt != nil {
			mime = byExt
		}
	}

	return &Classified{
		MimeType: mime.String(),
		FileType: fileType,
		Body:     io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

func fileTypeOf(mime string) (entity.FileType, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return entity.FileTypeImage, true
	case strings.HasPrefix(mime, "video/"):
		return entity.FileTypeVideo, true
	case strings.HasPrefix(mime, "audio/"):
		return entity.FileTypeAudio, true
	}
	return "", false
}

func mimeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/x-m4a"
	}
	return "application/octet-stream"
}
