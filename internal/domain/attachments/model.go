package attachments

import "time"

// Attachment guarda solo metadatos del archivo adjunto a una solicitud.
// El blob real vive fuera (StorageURL); el formato de almacenamiento no es
// responsabilidad de este backend.
type Attachment struct {
	ID        string
	RequestID string

	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageURL string

	UploadedBy string
	CreatedAt  time.Time
}
