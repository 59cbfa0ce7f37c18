package types

// Kind represents the detected image container kind.
type Kind int

const (
	// KindUnknown represents an unknown or unsupported container.
	KindUnknown Kind = iota
	// KindPNG represents PNG containers.
	KindPNG
	// KindJPEG represents JPEG containers.
	KindJPEG
	// KindWEBP represents WEBP (RIFF) containers.
	KindWEBP
	// KindText represents plain-text input carrying a bare parameter payload.
	KindText
)

// String returns the container kind name.
func (k Kind) String() string {
	switch k {
	case KindPNG:
		return "PNG"
	case KindJPEG:
		return "JPEG"
	case KindWEBP:
		return "WEBP"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Extensions returns common file extensions for this container kind.
func (k Kind) Extensions() []string {
	switch k {
	case KindPNG:
		return []string{".png"}
	case KindJPEG:
		return []string{".jpg", ".jpeg"}
	case KindWEBP:
		return []string{".webp"}
	case KindText:
		return []string{".txt"}
	default:
		return nil
	}
}

// DetectKind determines the container kind by examining magic bytes.
//
// Detection is based on file signatures at the beginning of the buffer.
// It does not validate the full container structure.
func DetectKind(data []byte) Kind {
	if len(data) < 12 {
		return KindUnknown
	}

	// PNG signature: \x89PNG\r\n\x1a\n
	if string(data[:8]) == "\x89PNG\r\n\x1a\n" {
		return KindPNG
	}

	// JPEG SOI marker followed by another marker byte
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return KindJPEG
	}

	// RIFF....WEBP
	if string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return KindWEBP
	}

	return KindUnknown
}
