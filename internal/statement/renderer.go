package statement

import (
	"context"
	"fmt"
	"strings"

	"github.com/jkestates/estatedesk/internal/clock"
	"github.com/jkestates/estatedesk/internal/config"
	"github.com/jkestates/estatedesk/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProfileSource supplies the business letterhead at render time.
type ProfileSource interface {
	Current() config.BusinessProfile
}

type Params struct {
	fx.In

	Profile ProfileSource
	Clock   clock.Clock
	Log     *zap.Logger
	Metrics *observability.Metrics
}

// Renderer lays out already computed values. It never derives totals.
type Renderer struct {
	profile ProfileSource
	clock   clock.Clock
	log     *zap.Logger
	metrics *observability.Metrics
}

func NewRenderer(p Params) *Renderer {
	return &Renderer{
		profile: p.Profile,
		clock:   p.Clock,
		log:     p.Log.Named("statement.renderer"),
		metrics: p.Metrics,
	}
}

var Module = fx.Module("statement",
	fx.Provide(func(store *config.ProfileStore) ProfileSource { return store }),
	fx.Provide(NewRenderer),
)

func (r *Renderer) Render(ctx context.Context, req Request) (*Document, error) {
	if req.Format == "" {
		req.Format = FormatPDF
	}
	if req.Format != FormatPDF && req.Format != FormatCSV {
		return nil, ErrUnsupportedFormat
	}

	now := r.clock.Now(ctx)
	profile := r.profile.Current()
	env := layoutEnv{
		fmt:        newFormatter(profile.Locale, profile.Currency, profile.DateLayout),
		letterhead: letterhead(profile),
		now:        now,
	}

	layout, err := buildLayout(env, req)
	if err != nil {
		return nil, err
	}
	r.warnPlaceholders(req.Kind, layout)

	var data []byte
	switch req.Format {
	case FormatCSV:
		data, err = writeCSV(layout)
	default:
		data, err = writePDF(layout)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", req.Kind, err)
	}

	if r.metrics != nil {
		r.metrics.DocumentsRendered.WithLabelValues(string(req.Kind), string(req.Format)).Inc()
	}
	return &Document{
		Filename:    filename(req, now),
		ContentType: req.Format.ContentType(),
		Data:        data,
	}, nil
}

func buildLayout(env layoutEnv, req Request) (Layout, error) {
	switch req.Kind {
	case KindUtilityBillBatch:
		p, ok := req.Payload.(UtilityBillBatch)
		if !ok {
			return Layout{}, ErrPayloadMismatch
		}
		return buildUtilityBillBatch(env, p), nil
	case KindUtilityBillSingle:
		p, ok := req.Payload.(UtilityBillSingle)
		if !ok {
			return Layout{}, ErrPayloadMismatch
		}
		return buildUtilityBillSingle(env, p), nil
	case KindInvoice:
		p, ok := req.Payload.(Invoice)
		if !ok {
			return Layout{}, ErrPayloadMismatch
		}
		return buildInvoice(env, p), nil
	case KindPaymentReceipt:
		p, ok := req.Payload.(PaymentReceipt)
		if !ok {
			return Layout{}, ErrPayloadMismatch
		}
		return buildPaymentReceipt(env, p), nil
	case KindTenantStatement:
		p, ok := req.Payload.(TenantStatement)
		if !ok {
			return Layout{}, ErrPayloadMismatch
		}
		return buildTenantStatement(env, p), nil
	case KindAnalyticsReport:
		p, ok := req.Payload.(AnalyticsReport)
		if !ok {
			return Layout{}, ErrPayloadMismatch
		}
		return buildAnalyticsReport(env, p), nil
	}
	return Layout{}, ErrUnsupportedKind
}

func letterhead(p config.BusinessProfile) Letterhead {
	contact := make([]string, 0, 2)
	if p.Phone != "" {
		contact = append(contact, "Phone: "+p.Phone)
	}
	if p.Email != "" {
		contact = append(contact, "Email: "+p.Email)
	}
	return Letterhead{
		Name:    orPlaceholder(p.Name, "Estate Management System"),
		Address: p.Address,
		Contact: strings.Join(contact, " | "),
	}
}

func (r *Renderer) warnPlaceholders(kind Kind, l Layout) {
	for _, group := range [][]Field{l.Parties, l.Details} {
		for _, f := range group {
			if f.Value == UnknownTenant || f.Value == UnknownProperty {
				r.log.Warn("rendering with placeholder", zap.String("kind", string(kind)), zap.String("field", f.Label))
			}
		}
	}
}
