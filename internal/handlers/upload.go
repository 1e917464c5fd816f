package handlers

import (
	"errors"
	"net/http"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/loader"
	"sales-dashboard/internal/session"
)

// HandleUpload parses a multipart sales file and replaces the session's
// dataset on success. A failed parse leaves the session untouched.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Upload.MaxBytes)

	if err := r.ParseMultipartForm(h.cfg.Upload.MaxBytes); err != nil {
		h.writeErr(w, r, apperrors.BadRequestWrap(err, "invalid multipart upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeErr(w, r, apperrors.BadRequestWrap(err, "missing file field"))
		return
	}
	defer file.Close()

	t, err := loader.Load(r.Context(), header.Filename, file)
	if err != nil {
		var unsupported *loader.ErrUnsupportedFormat
		if errors.As(err, &unsupported) {
			h.writeErr(w, r, apperrors.ValidationWrap(err, "unsupported file format"))
			return
		}
		h.writeErr(w, r, apperrors.BadRequestWrap(err, "failed to parse file"))
		return
	}

	sid := session.FromContext(r.Context())
	h.store.SetDataset(sid, t, session.SourceUpload, header.Filename)

	h.logger.Info("file uploaded",
		"filename", header.Filename,
		"rows", t.NumRows(),
		"columns", t.NumCols(),
	)

	apperrors.WriteSuccess(w, map[string]any{
		"filename": header.Filename,
		"rows":     t.NumRows(),
		"columns":  t.NumCols(),
	})
}
