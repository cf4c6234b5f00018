package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/HSouheill/taxdesk_backend/apperrors"
)

// MaxFileSize is the default upload limit (25MB).
const MaxFileSize = 25 * 1024 * 1024

var (
	allowedContentTypes = toSet(
		"application/pdf",
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/heic",
		"text/plain",
		"text/csv",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/zip",
	)

	thumbnailTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
	}

	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

func toSet(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// CleanFilename removes any potentially dangerous characters from the filename
func CleanFilename(filename string) string {
	// Remove any path components
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")
	filename = strings.TrimLeft(filename, ".")
	if filename == "" {
		return "file"
	}
	return filename
}

// NormalizeContentType strips parameters such as charset from a
// Content-Type header value.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// ValidateFile rejects empty or oversized payloads and disallowed types.
// maxSize <= 0 means MaxFileSize.
func ValidateFile(contentType string, size, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	if size <= 0 {
		return apperrors.Validation("File is empty")
	}
	if size > maxSize {
		return apperrors.Validation(fmt.Sprintf("File too large. Maximum size is %d bytes", maxSize)).
			WithDetail("maxBytes", maxSize)
	}
	if !allowedContentTypes[NormalizeContentType(contentType)] {
		return apperrors.Validation("Unsupported file type").WithDetail("contentType", contentType)
	}
	return nil
}

// BuildObjectKey returns the storage key of a document. The uuid prefix keeps
// keys unique when the same filename is uploaded twice.
func BuildObjectKey(clientID, folderID, filename string) string {
	return fmt.Sprintf("clients/%s/folders/%s/%s-%s", clientID, folderID, uuid.NewString(), CleanFilename(filename))
}

// ThumbnailKey derives the key of a document's thumbnail.
func ThumbnailKey(key string) string {
	return strings.TrimSuffix(key, filepath.Ext(key)) + ".thumb.jpg"
}

// SupportsThumbnail reports whether a thumbnail can be rendered for the type.
func SupportsThumbnail(contentType string) bool {
	return thumbnailTypes[NormalizeContentType(contentType)]
}

// MakeThumbnail decodes an image and returns a JPEG resized to a max width
// of 320px, keeping the aspect ratio.
func MakeThumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Resize(img, 320, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
