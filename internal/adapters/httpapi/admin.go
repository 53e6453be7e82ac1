package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"loanlocator/internal/auth"
	"loanlocator/internal/core"
	"loanlocator/pkg/domain"
)

type loginRequest struct {
	Password string `json:"password"`
}

type importRequest struct {
	ArchiveKey string `json:"archive_key"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}
	if err := h.verifier.Verify(req.Password); err != nil {
		h.logger.Warn("admin login rejected", "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid password")
		return
	}
	session := h.sessions.Issue()
	h.logger.Info("admin login", "remote", r.RemoteAddr, "expires_at", session.ExpiresAt)
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if !h.authorize(w, r) {
		return
	}
	token, _ := auth.BearerToken(r)
	h.sessions.Revoke(token)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) bool {
	token, ok := auth.BearerToken(r)
	if !ok || h.sessions.Validate(token) != nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="loanlocator"`)
		writeError(w, http.StatusUnauthorized, "unauthorized", "admin session required")
		return false
	}
	return true
}

// handleAdmin dispatches /api/v1/admin/<kind>[/<action-or-key>].
func (h *Handler) handleAdmin(w http.ResponseWriter, r *http.Request, remainder string) {
	kindRaw, rest, _ := strings.Cut(remainder, "/")
	kind, ok := domain.ParseEntityType(kindRaw)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "admin endpoint not found")
		return
	}
	if strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "not_found", "admin endpoint not found")
		return
	}

	switch rest {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r, kind)
		case http.MethodPost:
			h.handleCreate(w, r, kind)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		}
	case "export":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		h.handleExport(w, r, kind)
	case "import":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		h.handleImport(w, r, kind)
	case "clear":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		h.handleClear(w, r, kind)
	case "archives":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		archives, err := h.service.ListArchives(r.Context(), kind)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"archives": archives})
	default:
		switch r.Method {
		case http.MethodPut:
			h.handleUpdate(w, r, kind, rest)
		case http.MethodDelete:
			h.handleDelete(w, r, kind, rest)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		}
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, kind domain.EntityType) {
	if kind == domain.EntityLoan {
		loans, err := h.service.FilterLoans(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"loans": loans})
		return
	}
	ranges, err := h.service.ListRanges(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranges": ranges})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request, kind domain.EntityType) {
	var (
		created any
		err     error
	)
	if kind == domain.EntityLoan {
		var form domain.LoanForm
		if err := decodeJSON(w, r, &form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
			return
		}
		created, err = h.service.CreateLoan(r.Context(), form)
	} else {
		var form domain.RangeForm
		if err := decodeJSON(w, r, &form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
			return
		}
		created, err = h.service.CreateRange(r.Context(), form)
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.refresh(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, kind domain.EntityType, key string) {
	var (
		updated any
		err     error
	)
	if kind == domain.EntityLoan {
		loan, perr := strconv.ParseInt(key, 10, 64)
		if perr != nil || loan < 0 {
			writeError(w, http.StatusBadRequest, "invalid_field", fmt.Sprintf("invalid loan key %q", key))
			return
		}
		var form domain.LoanForm
		if err := decodeJSON(w, r, &form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
			return
		}
		updated, err = h.service.UpdateLoan(r.Context(), loan, form)
	} else {
		if _, _, perr := domain.ParseRangeID(key); perr != nil {
			writeError(w, http.StatusBadRequest, "invalid_field", perr.Error())
			return
		}
		var form domain.RangeForm
		if err := decodeJSON(w, r, &form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
			return
		}
		updated, err = h.service.UpdateRange(r.Context(), key, form)
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.refresh(r.Context())
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, kind domain.EntityType, key string) {
	var err error
	if kind == domain.EntityLoan {
		loan, perr := strconv.ParseInt(key, 10, 64)
		if perr != nil || loan < 0 {
			writeError(w, http.StatusBadRequest, "invalid_field", fmt.Sprintf("invalid loan key %q", key))
			return
		}
		err = h.service.DeleteLoan(r.Context(), loan)
	} else {
		err = h.service.DeleteRange(r.Context(), key)
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.refresh(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, kind domain.EntityType) {
	if archive, _ := strconv.ParseBool(r.URL.Query().Get("archive")); archive {
		info, err := h.service.ArchiveExport(r.Context(), kind)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"archive": info})
		return
	}
	payload, err := h.service.Export(r.Context(), kind)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.service.ExportFilename(kind)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// handleImport accepts either a JSON array of records or {"archive_key": "..."}.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request, kind domain.EntityType) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}
	trimmed := bytes.TrimSpace(body)
	var count int
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		count, err = h.service.Import(r.Context(), kind, bytes.NewReader(trimmed))
	case bytes.HasPrefix(trimmed, []byte("{")):
		var req importRequest
		if jerr := json.Unmarshal(trimmed, &req); jerr != nil {
			writeError(w, http.StatusBadRequest, "invalid_payload", jerr.Error())
			return
		}
		count, err = h.service.ImportArchive(r.Context(), kind, req.ArchiveKey)
	default:
		err = domain.ErrInvalidPayload
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"imported": count})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request, kind domain.EntityType) {
	var c core.Confirmation
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}
	deleted, err := h.service.Clear(r.Context(), kind, c)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Warn("collection cleared", "entity", string(kind), "deleted", deleted)
	h.refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}
