// Package filestore is the upload collaborator boundary: the core
// hands over raw bytes and a content type and gets back an opaque
// reference it stores on the Payment.
package filestore

import "context"

type Store interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
