package testutil

import (
	"time"

	"github.com/jkestates/estatedesk/internal/clock"
	"github.com/jkestates/estatedesk/internal/config"
	"github.com/jkestates/estatedesk/internal/observability"
	"github.com/jkestates/estatedesk/internal/statement"
	"go.uber.org/zap"
)

// RenderedAt is the instant stamped on documents produced by NewRenderer.
var RenderedAt = time.Date(2025, time.March, 31, 8, 0, 0, 0, time.UTC)

func BusinessProfile() config.BusinessProfile {
	return config.BusinessProfile{
		Name:       "J.K Estate Management Ltd.",
		Address:    "000-245 Nairobi Road, Nairobi, Kenya",
		Phone:      "+254 798 118 515",
		Email:      "info@estatemgmt.co.ke",
		Currency:   "KES",
		Locale:     "en",
		DateLayout: "02/01/2006",
	}
}

func NewRenderer() *statement.Renderer {
	return statement.NewRenderer(statement.Params{
		Profile: config.NewProfileStore(BusinessProfile()),
		Clock:   clock.Fixed(RenderedAt),
		Log:     zap.NewNop(),
		Metrics: observability.NopMetrics(),
	})
}
