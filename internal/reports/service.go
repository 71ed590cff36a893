package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/blob"
	"github.com/fdg312/health-navigator/internal/medications"
	"github.com/fdg312/health-navigator/internal/metrics"
	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/fdg312/health-navigator/internal/userctx"
	"github.com/google/uuid"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotSynced      = errors.New("metrics not synced")
	ErrReportNotFound = errors.New("report not found")
)

const (
	reportContentType        = "application/pdf"
	defaultPresignTTLSeconds = 900
)

type metricsSource interface {
	Snapshot(ctx context.Context) (*metrics.SnapshotResponse, error)
	Trends(ctx context.Context) (*metrics.TrendsResponse, error)
}

type medicationsSource interface {
	List(ctx context.Context) (*medications.ListMedicationsResponse, error)
}

// Service содержит бизнес-логику отчётов. Без blob-хранилища работает
// в локальном режиме: байты PDF сохраняются вместе с метаданными.
type Service struct {
	reportsStorage storage.ReportsStorage
	metrics        metricsSource
	medications    medicationsSource
	generator      *Generator
	blobStore      blob.Store
	localMode      bool
	presignTTL     int
	now            func() time.Time
}

func NewService(reportsStorage storage.ReportsStorage, metricsSvc metricsSource, medsSvc medicationsSource, blobStore blob.Store, presignTTLSeconds int) *Service {
	if presignTTLSeconds <= 0 {
		presignTTLSeconds = defaultPresignTTLSeconds
	}
	return &Service{
		reportsStorage: reportsStorage,
		metrics:        metricsSvc,
		medications:    medsSvc,
		generator:      NewGenerator(),
		blobStore:      blobStore,
		localMode:      blobStore == nil,
		presignTTL:     presignTTLSeconds,
		now:            time.Now,
	}
}

// Create строит PDF из текущего снапшота. Без синхронизации отчёт не
// из чего собирать: ErrNotSynced. Тренды и лекарства — best effort.
func (s *Service) Create(ctx context.Context) (*CreateReportResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	snapshotResp, err := s.metrics.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, metrics.ErrNotSynced) {
			return nil, ErrNotSynced
		}
		return nil, err
	}

	input := ReportInput{
		GeneratedAt: s.now(),
		Snapshot:    snapshotResp.Snapshot,
		Score:       snapshotResp.Score,
	}

	if trends, err := s.metrics.Trends(ctx); err == nil {
		input.Trends = trends
	}
	if meds, err := s.medications.List(ctx); err == nil {
		input.Medications = meds.Medications
	} else {
		log.Printf("WARNING: failed to list medications for report: %v", err)
	}

	data, err := s.generator.Generate(input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	meta := storage.ReportMeta{
		ID:        uuid.New(),
		UserID:    userID,
		SizeBytes: int64(len(data)),
		CreatedAt: s.now().UTC(),
	}

	if s.localMode {
		meta.Data = data
	} else {
		objectKey := fmt.Sprintf("reports/%s/%s.pdf", userID, meta.ID.String())
		if _, err := s.blobStore.PutObject(ctx, objectKey, data, reportContentType); err != nil {
			return nil, fmt.Errorf("failed to upload report: %w", err)
		}
		meta.ObjectKey = objectKey
	}

	saved, err := s.reportsStorage.CreateReport(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}

	log.Printf("INFO reports: generated report %s for user %s (%d bytes)", saved.ID, userID, saved.SizeBytes)
	return &CreateReportResponse{Report: metaToDTO(saved)}, nil
}

func (s *Service) List(ctx context.Context, limit int) (*ListReportsResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	metaList, err := s.reportsStorage.ListReports(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]ReportDTO, 0, len(metaList))
	for _, meta := range metaList {
		reports = append(reports, metaToDTO(meta))
	}
	return &ListReportsResponse{Reports: reports}, nil
}

// Download возвращает либо байты PDF (локальный режим), либо
// presigned-URL для редиректа (S3).
func (s *Service) Download(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, "", ErrUnauthorized
	}

	meta, err := s.reportsStorage.GetReport(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrReportNotFound
		}
		return nil, "", err
	}

	if meta.ObjectKey == "" {
		return meta.Data, "", nil
	}

	if s.blobStore == nil {
		return nil, "", fmt.Errorf("report %s is stored remotely but blob store is not configured", id)
	}

	url, err := s.blobStore.PresignGet(ctx, meta.ObjectKey, s.presignTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to presign report URL: %w", err)
	}
	return nil, url, nil
}

func userIDFromContext(ctx context.Context) string {
	userID, ok := userctx.GetUserID(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(userID)
}
