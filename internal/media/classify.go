package media

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aldikurniawan2005/media-capture/internal/domain"
)

const defaultMIME = "application/octet-stream"

// types takes precedence over the host's mime.types so classification does not
// depend on which distribution the server runs on.
var types = map[string]string{
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
	".ico":  "image/vnd.microsoft.icon",
	".jpe":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",

	".3gp":  "video/3gpp",
	".avi":  "video/x-msvideo",
	".flv":  "video/x-flv",
	".m4v":  "video/mp4",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".ogv":  "video/ogg",
	".webm": "video/webm",
	".wmv":  "video/x-ms-wmv",

	".bin":  "application/octet-stream",
	".exe":  "application/octet-stream",
	".json": "application/json",
	".mp3":  "audio/mpeg",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".wav":  "audio/x-wav",
	".zip":  "application/zip",
}

type UnsupportedTypeError struct {
	MIME string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %s", e.MIME)
}

func lookup(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ""
	}
	if t, ok := types[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
		return t
	}
	return ""
}

// DetectMIME resolves the MIME type of an upload from its filename extension,
// falling back to the client-declared type.
func DetectMIME(filename, declared string) string {
	if t := lookup(filename); t != "" {
		return t
	}
	if declared != "" {
		return declared
	}
	return defaultMIME
}

// Classify maps an upload to a category. Matching is by substring on the
// resolved MIME type, and "image" is tested before "video".
func Classify(filename, declared string) (domain.Category, string, bool) {
	mimeType := DetectMIME(filename, declared)
	switch {
	case strings.Contains(mimeType, "image"):
		return domain.CategoryImages, mimeType, true
	case strings.Contains(mimeType, "video"):
		return domain.CategoryVideos, mimeType, true
	}
	return "", mimeType, false
}

// ContentType is the type a stored file is served with.
func ContentType(filename string) string {
	if t := lookup(filename); t != "" {
		return t
	}
	return defaultMIME
}
