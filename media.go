package duet

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
)

// MediaKind tags an attachment's media type.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

// Attachment is an encoded media payload ready for backend dispatch.
type Attachment struct {
	// Kind indicates the media type: "image" or "audio".
	Kind MediaKind `json:"kind"`
	// Base64 contains the standard-encoded payload.
	Base64 string `json:"base64"`
	// MimeType specifies the payload format (e.g. "image/png").
	MimeType string `json:"mimeType"`
}

// ImageFromBytes encodes raw image bytes as a PNG attachment.
func ImageFromBytes(data []byte) Attachment {
	return Attachment{
		Kind:     MediaImage,
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: "image/png",
	}
}

// ImageFromFile reads and encodes an image file as a PNG attachment.
func ImageFromFile(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, &MediaError{Op: "read", Path: path, Err: err}
	}
	return ImageFromBytes(data), nil
}

// AudioFromBytes encodes raw audio bytes with the given MIME type.
// An empty mimeType falls back to "audio/mp3".
func AudioFromBytes(data []byte, mimeType string) Attachment {
	if mimeType == "" {
		mimeType = "audio/mp3"
	}
	return Attachment{
		Kind:     MediaAudio,
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}
}

// AudioFromFile reads and encodes an audio file, inferring the MIME type
// from the file extension.
func AudioFromFile(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, &MediaError{Op: "read", Path: path, Err: err}
	}
	return AudioFromBytes(data, audioMimeType(path)), nil
}

// audioMimeType infers an audio MIME type from a file extension.
func audioMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	case ".flac":
		return "audio/flac"
	default:
		return "audio/mp3"
	}
}
