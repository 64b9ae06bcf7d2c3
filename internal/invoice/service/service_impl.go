package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/invoice/domain"
	"github.com/jkestates/estatedesk/internal/statement"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Renderer *statement.Renderer
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	renderer *statement.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		repo:     p.Repo,
		renderer: p.Renderer,
	}
}

func (s *Service) Document(ctx context.Context, invoiceID snowflake.ID, format statement.Format) (*statement.Document, error) {
	view, err := s.repo.FindView(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	payload := statement.Invoice{
		InvoiceID:   view.ID.String(),
		InvoiceType: view.InvoiceType,
		Amount:      view.Amount,
		DueDate:     view.DueDate,
		CreatedAt:   view.CreatedAt,
	}
	if view.TenantName != nil {
		payload.TenantName = *view.TenantName
	}
	if view.UnitNumber != nil {
		payload.UnitNumber = *view.UnitNumber
	}
	if view.PropertyName != nil {
		payload.PropertyName = *view.PropertyName
	}

	return s.renderer.Render(ctx, statement.Request{
		Kind:    statement.KindInvoice,
		Format:  format,
		Payload: payload,
	})
}
