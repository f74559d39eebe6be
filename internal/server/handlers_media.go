package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"quill/internal/api"
	"quill/internal/models"
)

const mediaURLPrefix = "/media/"

func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	s.withLimiter(w, r, s.uploadLimiter, "upload", func() {
		maxBody := s.mediaService.maxBytes + s.opts.Media.MultipartMaxMemory
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		if err := r.ParseMultipartForm(s.opts.Media.MultipartMaxMemory); err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, classifyMultipartError(err))
			return
		}

		kind, err := models.ParseMediaKind(r.FormValue("kind"))
		if err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidArgument))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("file is required"), ErrCodeMissingRequired))
			return
		}
		defer file.Close()

		result, err := s.mediaService.Upload(r.Context(), kind, header.Filename, file, currentPrincipal(r).actor())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, api.MediaUploadResponse{
			Media:  result.Media,
			URL:    mediaURLPrefix + result.Media.Key,
			Width:  result.Width,
			Height: result.Height,
		})
	})
}

func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PathValue("key"))
	if key == "" {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("media not found"), ErrCodeMediaNotFound))
		return
	}
	reader, row, err := s.mediaService.Open(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", row.MediaType)
	w.Header().Set("Content-Length", strconv.FormatInt(row.SizeBytes, 10))
	w.Header().Set("ETag", `"`+row.SHA256+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if match := r.Header.Get("If-None-Match"); match != "" && match == `"`+row.SHA256+`"` {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		s.log().Warn("media stream interrupted", "key", row.Key, "error", err)
	}
}

func (s *Server) handleMediaGC(w http.ResponseWriter, r *http.Request) {
	var req api.MediaGCRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	if req.Apply && r.Header.Get("X-Confirm") != "true" {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("apply requires X-Confirm: true header"), ErrCodeMissingRequired))
		return
	}

	s.withLimiter(w, r, s.gcLimiter, "media gc", func() {
		result, err := s.mediaService.GC(r.Context(), req.BatchSize, req.Apply)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.MediaGCResponse{
			CandidateCount: result.CandidateCount,
			DeletedCount:   result.DeletedCount,
			FailedCount:    result.FailedCount,
			ReclaimedBytes: result.ReclaimedBytes,
			DryRun:         result.DryRun,
		})
	})
}

func classifyMultipartError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return badRequestCode(fmt.Errorf("request body too large"), ErrCodeRequestTooLarge)
	}
	return badRequestCode(err, ErrCodeInvalidArgument)
}
