package reports

import (
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
)

type ReportDTO struct {
	ID        uuid.UUID `json:"id"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateReportResponse struct {
	Report ReportDTO `json:"report"`
}

type ListReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func metaToDTO(meta storage.ReportMeta) ReportDTO {
	return ReportDTO{
		ID:        meta.ID,
		SizeBytes: meta.SizeBytes,
		CreatedAt: meta.CreatedAt,
	}
}
