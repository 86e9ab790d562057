package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/user/frameconv/pkg/ports"
	"github.com/user/frameconv/pkg/transcoder"
	"github.com/user/frameconv/pkg/widget"
)

type capabilityResponse struct {
	Supported bool     `json:"supported"`
	Encoders  []string `json:"encoders"`
	Reason    string   `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// handleCapability handles GET /api/capability.
func (s *Server) handleCapability(w http.ResponseWriter, r *http.Request) {
	c := s.widget.Capability(r.Context())
	resp := capabilityResponse{
		Supported: c.Supported,
		Encoders:  make([]string, 0, len(c.Encoders)),
		Reason:    c.Reason,
	}
	for _, codec := range c.Encoders {
		resp.Encoders = append(resp.Encoders, string(codec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleConvert handles POST /api/convert.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if err := s.widget.CheckCapability(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, string(transcoder.KindOf(err)), err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "", fmt.Errorf("invalid upload: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	cfg := transcoder.Config{Codec: r.FormValue("codec")}
	if cfg.Codec == "" {
		cfg.Codec = transcoder.DefaultConfig().Codec
	}
	if v := r.FormValue("maxDurationSeconds"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "", fmt.Errorf("invalid maxDurationSeconds %q", v))
			return
		}
		cfg.MaxDurationSeconds = d
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "", fmt.Errorf("missing video file: %w", err))
		return
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, "", fmt.Errorf("read upload: %w", err))
		return
	}

	path, err := s.opts.FileSystem.TempFile("frameconv-upload-*"+uploadExt(header.Filename), data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", fmt.Errorf("store upload: %w", err))
		return
	}

	src, err := s.opts.Open(path)
	if err != nil {
		s.opts.FileSystem.Remove(path)
		writeError(w, http.StatusUnprocessableEntity, string(transcoder.KindInputDecode), fmt.Errorf("cannot decode %s: %w", header.Filename, err))
		return
	}
	src = &uploadedSource{SourceMedia: src, path: path, fs: s.opts.FileSystem}

	s.logger.Info("Converting %s to %s (max %.0f seconds)...", header.Filename, cfg.Codec, cfg.MaxDurationSeconds)
	if err := s.widget.Start(r.Context(), src, cfg); err != nil {
		writeError(w, startStatus(err), string(transcoder.KindOf(err)), err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.widget.Snapshot())
}

// handleJob handles GET /api/job.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.widget.Snapshot())
}

// handleCancel handles DELETE /api/job.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.widget.Cancel()
	writeJSON(w, http.StatusOK, s.widget.Snapshot())
}

// handleOutput handles GET /api/job/output.
func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	out, ok := s.widget.Output()
	if !ok {
		writeError(w, http.StatusNotFound, "", errors.New("no output available"))
		return
	}
	w.Header().Set("Content-Type", out.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", out.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}

func startStatus(err error) int {
	if errors.Is(err, widget.ErrJobActive) {
		return http.StatusConflict
	}
	switch transcoder.KindOf(err) {
	case transcoder.KindCapabilityUnavailable:
		return http.StatusServiceUnavailable
	case transcoder.KindUnsupportedCodec:
		return http.StatusBadRequest
	case transcoder.KindInputDecode:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func uploadExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

// uploadedSource removes the stored upload once the widget closes it.
type uploadedSource struct {
	ports.SourceMedia
	path string
	fs   ports.FileSystem
}

func (u *uploadedSource) Close() error {
	err := u.SourceMedia.Close()
	if rmErr := u.fs.Remove(u.path); err == nil {
		err = rmErr
	}
	return err
}
