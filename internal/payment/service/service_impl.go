package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/payment/domain"
	"github.com/jkestates/estatedesk/internal/statement"
	"github.com/shopspring/decimal"
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
		log:      p.Log.Named("payment.service"),
		repo:     p.Repo,
		renderer: p.Renderer,
	}
}

func (s *Service) Receipt(ctx context.Context, paymentID snowflake.ID, format statement.Format) (*statement.Document, error) {
	view, err := s.repo.FindView(ctx, s.db, paymentID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrPaymentNotFound
	}
	if view.TenantName == nil {
		s.log.Warn("payment without tenant", zap.String("payment_id", view.ID.String()))
	}

	return s.renderer.Render(ctx, statement.Request{
		Kind:   statement.KindPaymentReceipt,
		Format: format,
		Payload: statement.PaymentReceipt{
			PaymentID:    view.ID.String(),
			TenantName:   domain.Deref(view.TenantName),
			PropertyName: domain.Deref(view.PropertyName),
			Amount:       view.Amount,
			PaymentDate:  view.PaymentDate,
			Method:       view.Method,
			Status:       view.Status,
			Notes:        domain.Deref(view.Notes),
		},
	})
}

// TenantStatement lists every payment of the tenant. Only completed payments
// count towards the total paid.
func (s *Service) TenantStatement(ctx context.Context, tenantID snowflake.ID, format statement.Format) (*statement.Document, error) {
	header, err := s.repo.FindTenantHeader(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, domain.ErrTenantNotFound
	}

	payments, err := s.repo.ListByTenant(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}

	payload := statement.TenantStatement{
		TenantName:   header.TenantName,
		UnitNumber:   domain.Deref(header.UnitNumber),
		PropertyName: domain.Deref(header.PropertyName),
		Entries:      make([]statement.StatementEntry, 0, len(payments)),
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
	}
	for _, p := range payments {
		if p == nil {
			continue
		}
		payload.Entries = append(payload.Entries, statement.StatementEntry{
			PaymentDate: time.Time(p.PaymentDate),
			Amount:      p.Amount,
			Method:      p.Method,
			Status:      p.Status,
			Notes:       p.Notes,
		})
		switch p.Status {
		case domain.StatusCompleted:
			payload.TotalPaid = payload.TotalPaid.Add(p.Amount)
		case domain.StatusPending:
			payload.TotalPending = payload.TotalPending.Add(p.Amount)
		}
	}

	return s.renderer.Render(ctx, statement.Request{
		Kind:    statement.KindTenantStatement,
		Format:  format,
		Payload: payload,
	})
}
