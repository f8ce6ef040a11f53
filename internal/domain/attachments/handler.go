package attachments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"concierium/internal/domain/requests"
	"concierium/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Límite del body multipart. Los adjuntos son itinerarios y vouchers, no
// archivos grandes.
const maxUploadBytes = 10 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/requests/{requestID}/attachments", func(rr chi.Router) {
		rr.Get("/", listAttachmentsHandler(svc))
		rr.Post("/", uploadAttachmentHandler(svc))
	})
}

type attachmentResponse struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	StorageURL string    `json:"storage_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func listAttachmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByRequest(r.Context(), claims, chi.URLParam(r, "requestID"))
		if err != nil {
			writeAttachmentError(w, err)
			return
		}

		out := make([]attachmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAttachmentResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// @Summary Subir adjunto a una solicitud
// @Router /requests/{requestID}/attachments [post]
func uploadAttachmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// ParseMultipartForm solo limita el buffering en memoria; el tope
		// real del body lo pone MaxBytesReader.
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "expected multipart/form-data", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file field required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		a, err := svc.Add(r.Context(), claims, chi.URLParam(r, "requestID"), AddInput{
			FileName:   header.Filename,
			MimeType:   header.Header.Get("Content-Type"),
			SizeBytes:  header.Size,
			StorageURL: r.FormValue("storage_url"),
		})
		if err != nil {
			writeAttachmentError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAttachmentResponse(a))
	}
}

func toAttachmentResponse(a Attachment) attachmentResponse {
	return attachmentResponse{
		ID:         a.ID,
		RequestID:  a.RequestID,
		FileName:   a.FileName,
		MimeType:   a.MimeType,
		SizeBytes:  a.SizeBytes,
		StorageURL: a.StorageURL,
		CreatedAt:  a.CreatedAt,
	}
}

func writeAttachmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, requests.ErrNotFound):
		http.Error(w, "request not found", http.StatusNotFound)
	case errors.Is(err, requests.ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
