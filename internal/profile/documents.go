package profile

// Upload limits enforced before anything touches storage.
const maxDocumentBytes = 3 * 1024 * 1024

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// RejectReason explains why an upload was refused locally.
type RejectReason string

const (
	RejectUnknownSlot     RejectReason = "unknown_slot"
	RejectUnsupportedType RejectReason = "unsupported_type"
	RejectTooLarge        RejectReason = "too_large"
)

// CheckUpload validates an upload's slot, content type and size. An empty
// reason means the upload is acceptable.
func CheckUpload(kind DocumentKind, contentType string, sizeBytes int64) RejectReason {
	if !kind.IsValid() {
		return RejectUnknownSlot
	}
	if _, ok := allowedContentTypes[contentType]; !ok {
		return RejectUnsupportedType
	}
	if sizeBytes <= 0 || sizeBytes > maxDocumentBytes {
		return RejectTooLarge
	}
	return ""
}
