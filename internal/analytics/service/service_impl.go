package service

import (
	"context"
	"strings"

	analyticsdomain "github.com/jkestates/estatedesk/internal/analytics/domain"
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
	Repo     analyticsdomain.Repository
	Renderer *statement.Renderer
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     analyticsdomain.Repository
	renderer *statement.Renderer
}

var hundred = decimal.NewFromInt(100)

func New(p Params) analyticsdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("analytics.service"),
		repo:     p.Repo,
		renderer: p.Renderer,
	}
}

func (s *Service) Render(ctx context.Context, reportType statement.ReportType, filter analyticsdomain.Filter, format statement.Format) (*statement.Document, error) {
	report, err := s.Build(ctx, reportType, filter)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, statement.Request{
		Kind:    statement.KindAnalyticsReport,
		Format:  format,
		Payload: report,
	})
}

// Build aggregates the report rows. The renderer only formats the values
// produced here.
func (s *Service) Build(ctx context.Context, reportType statement.ReportType, filter analyticsdomain.Filter) (statement.AnalyticsReport, error) {
	if !filter.Start.IsZero() && !filter.End.IsZero() && filter.End.Before(filter.Start) {
		return statement.AnalyticsReport{}, analyticsdomain.ErrInvalidRange
	}

	report := statement.AnalyticsReport{
		Type:        reportType,
		Title:       statement.ReportTitle(reportType),
		PeriodStart: filter.Start,
		PeriodEnd:   filter.End,
	}

	var err error
	switch reportType {
	case statement.ReportFinancial:
		err = s.financial(ctx, filter, &report)
	case statement.ReportOccupancy:
		err = s.occupancy(ctx, filter, &report)
	case statement.ReportUtility:
		err = s.utility(ctx, filter, &report)
	case statement.ReportTenant:
		err = s.tenants(ctx, filter, &report)
	default:
		return statement.AnalyticsReport{}, analyticsdomain.ErrUnknownReport
	}
	if err != nil {
		s.log.Error("failed to build report", zap.String("type", string(reportType)), zap.Error(err))
		return statement.AnalyticsReport{}, err
	}
	return report, nil
}

func (s *Service) financial(ctx context.Context, filter analyticsdomain.Filter, report *statement.AnalyticsReport) error {
	rows, err := s.repo.Financials(ctx, s.db, filter)
	if err != nil {
		return err
	}
	outstanding, err := s.repo.OutstandingInvoices(ctx, s.db, filter)
	if err != nil {
		return err
	}

	var payments int64
	collected, pending := decimal.Zero, decimal.Zero
	report.Columns = []string{"#", "Property", "Payments", "Collected", "Pending"}
	for i, row := range rows {
		payments += row.PaymentCount
		collected = collected.Add(row.Collected)
		pending = pending.Add(row.Pending)
		report.Rows = append(report.Rows, []statement.Value{
			statement.Count(int64(i + 1)),
			statement.Text(nameOr(row.PropertyName, statement.UnknownProperty)),
			statement.Count(row.PaymentCount),
			statement.Money(row.Collected),
			statement.Money(row.Pending),
		})
	}

	report.Summary = []statement.SummaryItem{
		{Label: "Total Collected", Value: statement.Money(collected)},
		{Label: "Pending Payments", Value: statement.Money(pending)},
		{Label: "Payments", Value: statement.Count(payments)},
		{Label: "Outstanding Invoices", Value: statement.Money(outstanding.Amount)},
		{Label: "Collection Rate", Value: statement.Percent(ratio(collected, collected.Add(pending)))},
	}
	return nil
}

func (s *Service) occupancy(ctx context.Context, filter analyticsdomain.Filter, report *statement.AnalyticsReport) error {
	rows, err := s.repo.Occupancy(ctx, s.db, filter)
	if err != nil {
		return err
	}

	var units, occupied int64
	report.Columns = []string{"#", "Property", "Units", "Occupied", "Vacant", "Occupancy Rate"}
	for i, row := range rows {
		units += row.Units
		occupied += row.Occupied
		report.Rows = append(report.Rows, []statement.Value{
			statement.Count(int64(i + 1)),
			statement.Text(row.PropertyName),
			statement.Count(row.Units),
			statement.Count(row.Occupied),
			statement.Count(row.Vacant()),
			statement.Percent(ratio(decimal.NewFromInt(row.Occupied), decimal.NewFromInt(row.Units))),
		})
	}

	vacant := units - occupied
	if vacant < 0 {
		vacant = 0
	}
	report.Summary = []statement.SummaryItem{
		{Label: "Total Units", Value: statement.Count(units)},
		{Label: "Occupied", Value: statement.Count(occupied)},
		{Label: "Vacant", Value: statement.Count(vacant)},
		{Label: "Occupancy Rate", Value: statement.Percent(ratio(decimal.NewFromInt(occupied), decimal.NewFromInt(units)))},
	}
	return nil
}

func (s *Service) utility(ctx context.Context, filter analyticsdomain.Filter, report *statement.AnalyticsReport) error {
	rows, err := s.repo.UtilityByMonth(ctx, s.db, filter)
	if err != nil {
		return err
	}

	var bills int64
	consumed, billed := decimal.Zero, decimal.Zero
	report.Columns = []string{"#", "Property", "Billing Month", "Bills", "Units Consumed", "Amount Billed"}
	for i, row := range rows {
		bills += row.Bills
		consumed = consumed.Add(row.UnitsConsumed)
		billed = billed.Add(row.TotalAmount)
		report.Rows = append(report.Rows, []statement.Value{
			statement.Count(int64(i + 1)),
			statement.Text(row.PropertyName),
			statement.Text(row.BillingMonth.Format("January 2006")),
			statement.Count(row.Bills),
			statement.Quantity(row.UnitsConsumed),
			statement.Money(row.TotalAmount),
		})
	}

	report.Summary = []statement.SummaryItem{
		{Label: "Bills Issued", Value: statement.Count(bills)},
		{Label: "Units Consumed", Value: statement.Quantity(consumed)},
		{Label: "Amount Billed", Value: statement.Money(billed)},
	}
	return nil
}

func (s *Service) tenants(ctx context.Context, filter analyticsdomain.Filter, report *statement.AnalyticsReport) error {
	rows, err := s.repo.Tenants(ctx, s.db, filter)
	if err != nil {
		return err
	}

	var active int64
	report.Columns = []string{"#", "Tenant", "Phone", "Email", "Unit", "Property", "Status"}
	for i, row := range rows {
		status := "Inactive"
		if row.IsActive {
			status = "Active"
			active++
		}
		report.Rows = append(report.Rows, []statement.Value{
			statement.Count(int64(i + 1)),
			statement.Text(row.Name),
			statement.Text(nameOr(row.Phone, statement.NotAvailable)),
			statement.Text(nameOr(row.Email, statement.NotAvailable)),
			statement.Text(nameOr(row.UnitNumber, statement.NotAvailable)),
			statement.Text(nameOr(row.PropertyName, statement.UnknownProperty)),
			statement.Text(status),
		})
	}

	total := int64(len(rows))
	report.Summary = []statement.SummaryItem{
		{Label: "Total Tenants", Value: statement.Count(total)},
		{Label: "Active", Value: statement.Count(active)},
		{Label: "Inactive", Value: statement.Count(total - active)},
	}
	return nil
}

// ratio returns part/whole as a percentage, zero when whole is zero.
func ratio(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

func nameOr(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return strings.TrimSpace(*value)
}
