// shipping-quote prints the price bands configured for a method and route
// and the quote a shipment of the given size would get.
//
//	go run ./cmd/shipping-quote -tenant acme -method 1 -route 2 -weight 1.5
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/config"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/service"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

func main() {
	var (
		tenantSlug = flag.String("tenant", config.DefaultTenantSlug(), "tenant slug")
		methodID   = flag.Int("method", 0, "shipping method id")
		routeID    = flag.Int("route", 0, "shipping route id")
		weight     = flag.String("weight", "0", "shipment weight in kg")
		volume     = flag.String("volume", "0", "shipment volume in cbm")
		declared   = flag.String("declared", "0", "declared value for insurance and customs")
	)
	flag.Parse()
	if *methodID == 0 || *routeID == 0 {
		log.Fatal("-method and -route are required")
	}
	input := models.QuoteInput{ShippingMethodId: *methodID, ShippingRouteId: *routeID}
	var err error
	if input.WeightKg, err = decimal.NewFromString(*weight); err != nil {
		log.Fatalf("bad -weight: %v", err)
	}
	if input.VolumeCbm, err = decimal.NewFromString(*volume); err != nil {
		log.Fatalf("bad -volume: %v", err)
	}
	if input.DeclaredValue, err = decimal.NewFromString(*declared); err != nil {
		log.Fatalf("bad -declared: %v", err)
	}

	config.ConnectDatabaseWithRetry()
	store := repository.New(config.GetDB())
	svc := service.New(service.Options{
		Store:                     store,
		Logger:                    config.GetLogger(),
		ShippingBasePriceFallback: config.ShippingBasePriceFallback(),
	})

	ctx := context.Background()
	tenant, err := store.Tenants().GetBySlug(ctx, *tenantSlug)
	if err != nil {
		log.Fatalf("tenant %q: %v", *tenantSlug, err)
	}
	ctx = appctx.SetTenant(ctx, tenant.ID, tenant.Slug)
	ctx = appctx.SetUser(ctx, 1, "cli", []string{models.RoleSlugAdmin}, "")

	bands, err := svc.Shipping.MethodRoutePrices(ctx, *methodID, *routeID)
	if err != nil {
		log.Fatalf("load price bands: %v", err)
	}
	if err := printBands(bands); err != nil {
		log.Fatalf("render bands: %v", err)
	}

	quote, err := svc.Shipping.Quote(ctx, input)
	if err != nil {
		log.Fatalf("quote: %s", models.PublicMessage(err))
	}
	fmt.Printf("\nQuote (%s, mode=%s, fallback=%t)\n", tenant.BaseCurrency, quote.PricingMode, quote.Fallback)
	if err := printQuote(quote); err != nil {
		log.Fatalf("render quote: %v", err)
	}
}

func bound(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func printBands(bands []*models.ShippingMethodRoutePrice) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Weight kg", "Volume cbm", "Per kg", "Per cbm", "Flat", "Handling")
	for _, b := range bands {
		err := table.Append([]string{
			fmt.Sprint(b.ID),
			b.MinWeightKg.String() + " .. " + bound(b.MaxWeightKg),
			b.MinVolumeCbm.String() + " .. " + bound(b.MaxVolumeCbm),
			b.PricePerKg.String(),
			b.PricePerCbm.String(),
			bound(b.FlatRate),
			b.HandlingFee.String(),
		})
		if err != nil {
			return err
		}
	}
	return table.Render()
}

func printQuote(q *models.ShipmentQuote) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Component", "Amount")
	rows := [][]string{
		{"Base", q.BaseCost.StringFixed(2)},
		{"Handling", q.HandlingFee.StringFixed(2)},
		{"Fuel surcharge", q.FuelSurcharge.StringFixed(2)},
		{"Insurance", q.Insurance.StringFixed(2)},
		{"Customs clearance", q.CustomsClearanceFee.StringFixed(2)},
		{"Customs duty", q.CustomsDuty.StringFixed(2)},
		{"Customs VAT", q.CustomsVat.StringFixed(2)},
		{"Total", q.Total.StringFixed(2)},
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
