package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"loanlocator/internal/blob"
	"loanlocator/pkg/domain"
)

const archivePrefix = "exports/"

// ErrArchiveDisabled is returned by archive operations when no blob store is configured.
var ErrArchiveDisabled = errors.New("archive storage not configured")

// ArchiveKey builds exports/<kind>-<YYYY-MM-DD>-<uuid>.json.
func ArchiveKey(kind domain.EntityType, at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s%s-%s-%s.json", archivePrefix, kind, at.UTC().Format(time.DateOnly), id)
}

// ExportFilename is the download name offered for an export, <kind>-<YYYY-MM-DD>.json.
func (s *Service) ExportFilename(kind domain.EntityType) string {
	return fmt.Sprintf("%s-%s.json", kind, s.now().Format(time.DateOnly))
}

// ArchiveExport writes the export of kind to the blob store. The returned info
// carries a download URL when the backend can presign one.
func (s *Service) ArchiveExport(ctx context.Context, kind domain.EntityType) (blob.Info, error) {
	if s.archive == nil {
		return blob.Info{}, ErrArchiveDisabled
	}
	payload, err := s.Export(ctx, kind)
	if err != nil {
		return blob.Info{}, err
	}
	key := ArchiveKey(kind, s.now(), uuid.New())
	info, err := s.archive.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{ContentType: "application/json"})
	if err != nil {
		s.logger.Error("archive export failed", "entity", string(kind), "key", key, "error", err)
		return blob.Info{}, fmt.Errorf("archive %s: %w", kind, err)
	}
	url, err := s.archive.PresignURL(ctx, key, blob.SignedURLOptions{})
	switch {
	case err == nil:
		info.URL = url
	case !errors.Is(err, blob.ErrUnsupported):
		s.logger.Warn("presign archive failed", "key", key, "error", err)
	}
	s.logger.Info("archive export written", "entity", string(kind), "key", key, "size", info.Size)
	return info, nil
}

// ListArchives returns archived exports of kind, oldest key first.
func (s *Service) ListArchives(ctx context.Context, kind domain.EntityType) ([]blob.Info, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(ctx, archivePrefix+string(kind)+"-")
}

// ImportArchive reads an archived export and imports it into kind.
func (s *Service) ImportArchive(ctx context.Context, kind domain.EntityType, key string) (int, error) {
	if s.archive == nil {
		return 0, ErrArchiveDisabled
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, &domain.FieldError{Field: "archive_key", Err: domain.ErrMissingField}
	}
	_, rc, err := s.archive.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return 0, fmt.Errorf("archive %s: %w", key, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("read archive %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	return s.Import(ctx, kind, rc)
}
