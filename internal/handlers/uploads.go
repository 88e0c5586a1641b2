// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/httputil"
	"inkwell/internal/storage"
)

// allowedUploadTypes are the image types accepted for featured images
// and avatars.
var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Uploads handles media file uploads to object storage.
type Uploads struct {
	storage  *storage.Client
	maxBytes int64
}

// NewUploads creates a new Uploads handler group.
func NewUploads(storageClient *storage.Client, maxBytes int64) *Uploads {
	return &Uploads{storage: storageClient, maxBytes: maxBytes}
}

// Upload accepts a multipart image, stores it in the public bucket, and
// returns the key and URL to reference from posts and profiles.
func (h *Uploads) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		httputil.RespondErrorMessage(w, http.StatusServiceUnavailable, "Object storage is not configured")
		return
	}

	// Limit request body to maxBytes + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1024)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		httputil.RespondErrorMessage(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, apperr.Validation("No file provided"))
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		httputil.RespondErrorMessage(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		httputil.RespondError(w, fmt.Errorf("read upload: %w", err))
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])

	if !allowedUploadTypes[contentType] {
		httputil.RespondError(w, apperr.Validation(fmt.Sprintf("File type %q is not allowed", contentType)))
		return
	}

	// Seek back to start after sniffing.
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		httputil.RespondError(w, fmt.Errorf("seek upload: %w", err))
		return
	}

	// Generate a unique storage key.
	now := time.Now()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	key := fmt.Sprintf("uploads/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), ext)

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, fmt.Errorf("read upload: %w", err))
		return
	}

	if err := h.storage.Upload(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondData(w, http.StatusCreated, map[string]string{
		"key": key,
		"url": h.storage.FileURL(key),
	})
}

// extensionFromType maps an allowed content type to a file extension,
// for uploads whose original filename has none.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
