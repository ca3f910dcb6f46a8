package http

import (
	"context"

	"surveycli/internal/services"
	api "surveycli/pkg/contracts/api/v1"
	"surveycli/pkg/contracts/domain"
)

// TabulationServiceInterface is the part of the tabulation service the
// handlers use
type TabulationServiceInterface interface {
	Settings(req api.TableOptionsRequest) (services.TableSettings, error)
	Table(ctx context.Context, req api.TableRequest, settings services.TableSettings) (*domain.Table, error)
	BuildReport(ctx context.Context, req api.ReportRequest) ([]*domain.Table, error)
	DefaultReport(ctx context.Context) ([]*domain.Table, error)
	ListQuestions(ctx context.Context) api.CodebookResponse
}
