package catalog

import "github.com/srujanab94/acp-commerce/internal/domain"

const (
	standardShipping = "Ships within 2 business days"
	standardReturns  = "30-day returns"
)

// Seed returns the demo product feed served when no external catalog
// is configured.
func Seed() *StaticCatalog {
	return NewStaticCatalog([]Product{
		{
			ID:           "prod_espresso_maker",
			Name:         "Stovetop Espresso Maker",
			Description:  "6-cup aluminum moka pot for stovetop espresso.",
			Price:        domain.Money{Amount: 3499, Currency: "usd"},
			Availability: InStock,
			ShippingInfo: standardShipping,
			ReturnPolicy: standardReturns,
		},
		{
			ID:           "prod_grinder_burr",
			Name:         "Conical Burr Grinder",
			Description:  "40-setting conical burr coffee grinder.",
			Price:        domain.Money{Amount: 8999, Currency: "usd"},
			Availability: InStock,
			ShippingInfo: standardShipping,
			ReturnPolicy: standardReturns,
		},
		{
			ID:           "prod_kettle_gooseneck",
			Name:         "Gooseneck Pour-Over Kettle",
			Description:  "1L variable-temperature gooseneck kettle.",
			Price:        domain.Money{Amount: 6500, Currency: "usd"},
			Availability: InStock,
			ShippingInfo: standardShipping,
			ReturnPolicy: standardReturns,
		},
		{
			ID:           "prod_beans_house",
			Name:         "House Blend Beans, 1kg",
			Description:  "Medium roast whole-bean house blend.",
			Price:        domain.Money{Amount: 2250, Currency: "usd"},
			Availability: InStock,
			ShippingInfo: standardShipping,
			ReturnPolicy: "Perishable, no returns",
		},
		{
			ID:           "prod_scale_barista",
			Name:         "Barista Scale with Timer",
			Description:  "0.1g precision brewing scale with built-in timer.",
			Price:        domain.Money{Amount: 4200, Currency: "usd"},
			Availability: OutOfStock,
			ShippingInfo: standardShipping,
			ReturnPolicy: standardReturns,
		},
	})
}
