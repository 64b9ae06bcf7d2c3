package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/property/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("property.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListProperties(ctx context.Context) ([]*domain.Property, error) {
	return s.repo.ListProperties(ctx, s.db)
}

func (s *Service) GetProperty(ctx context.Context, id snowflake.ID) (*domain.Property, error) {
	property, err := s.repo.FindProperty(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}
	return property, nil
}

func (s *Service) ListUnits(ctx context.Context, propertyID snowflake.ID) ([]domain.UnitView, error) {
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	units, err := s.repo.ListUnits(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.UnitView, 0, len(units))
	for _, unit := range units {
		if unit == nil {
			continue
		}
		views = append(views, domain.NewUnitView(*unit))
	}
	return views, nil
}

func (s *Service) GetTenant(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	tenant, err := s.repo.FindTenant(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	return tenant, nil
}
