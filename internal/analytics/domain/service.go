package domain

import (
	"context"
	"errors"

	"github.com/jkestates/estatedesk/internal/statement"
)

var (
	ErrUnknownReport = errors.New("unknown_report_type")
	ErrInvalidRange  = errors.New("invalid_date_range")
)

type Service interface {
	Build(ctx context.Context, reportType statement.ReportType, filter Filter) (statement.AnalyticsReport, error)
	Render(ctx context.Context, reportType statement.ReportType, filter Filter, format statement.Format) (*statement.Document, error)
}
