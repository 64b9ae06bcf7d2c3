package migration

import (
	invoicedomain "github.com/jkestates/estatedesk/internal/invoice/domain"
	paymentdomain "github.com/jkestates/estatedesk/internal/payment/domain"
	propertydomain "github.com/jkestates/estatedesk/internal/property/domain"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"gorm.io/gorm"
)

// Models lists every table the application owns.
func Models() []any {
	return []any{
		&propertydomain.Property{},
		&propertydomain.Unit{},
		&propertydomain.Tenant{},
		&billdomain.UtilityBill{},
		&paymentdomain.Payment{},
		&invoicedomain.Invoice{},
	}
}

// AutoMigrate builds the schema from the gorm models. sqlite databases used for
// local runs and tests are migrated this way; postgres uses the embedded SQL.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
