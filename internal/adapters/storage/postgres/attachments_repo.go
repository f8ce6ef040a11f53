package postgres

import (
	"context"
	"database/sql"

	"concierium/internal/domain/attachments"
)

type AttachmentsRepo struct {
	db *sql.DB
}

func NewAttachmentsRepo(db *sql.DB) *AttachmentsRepo {
	return &AttachmentsRepo{db: db}
}

func (r *AttachmentsRepo) Create(ctx context.Context, a attachments.Attachment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attachments (
			id, request_id, file_name, mime_type, size_bytes,
			storage_url, uploaded_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.RequestID,
		a.FileName,
		a.MimeType,
		a.SizeBytes,
		a.StorageURL,
		a.UploadedBy,
		a.CreatedAt,
	)
	return err
}

func (r *AttachmentsRepo) ListByRequest(ctx context.Context, requestID string) ([]attachments.Attachment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, file_name, mime_type, size_bytes,
		       storage_url, uploaded_by, created_at
		FROM attachments
		WHERE request_id = $1
		ORDER BY created_at DESC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]attachments.Attachment, 0)
	for rows.Next() {
		var a attachments.Attachment
		if err := rows.Scan(
			&a.ID,
			&a.RequestID,
			&a.FileName,
			&a.MimeType,
			&a.SizeBytes,
			&a.StorageURL,
			&a.UploadedBy,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
