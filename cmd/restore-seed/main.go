// restore-seed is a one-shot tool that loads the admin account and a demo
// catalog with customers into the configured database. Rows that already
// exist are left untouched, so it is safe to run repeatedly.
//
// Usage: SEED_ADMIN_PASSWORD=... go run ./cmd/restore-seed
package main

import (
	"context"
	"errors"
	"os"

	"bookkeeping/internal/app"
	"bookkeeping/internal/config"
	"bookkeeping/internal/core"
	"bookkeeping/internal/logging"
	"bookkeeping/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	Type    string
	Variant string
	Price   int64
}

var (
	seedCustomers = []string{"Anna", "Boris", "Clara", "Dmitri"}
	seedProducts  = []seedProduct{
		{"Milk", "1L", 40},
		{"Milk", "0.5L", 22},
		{"Eggs", "", 90},
		{"Bread", "white", 35},
		{"Bread", "rye", 45},
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.Setup(cfg.LogLevel, logging.FormatPretty)

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		logger.Fatal().Msg("SEED_ADMIN_PASSWORD not set")
	}

	ctx := context.Background()
	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer closeStore()

	err = st.InTx(ctx, func(tx core.Store) error {
		return seed(ctx, app.NewAppService(tx, nil), password, logger)
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("seed failed, nothing was written")
	}
	logger.Info().Msg("seed data restored")
}

func seed(ctx context.Context, svc app.ApplicationService, password string, logger zerolog.Logger) error {
	logger.Info().Msg("restoring admin user")
	if _, err := svc.CreateUser(ctx, app.CreateUserRequest{Username: "admin", Password: password, Role: core.RoleAdmin}); err != nil {
		if !errors.Is(err, core.ErrAlreadyExists) {
			return err
		}
		logger.Info().Msg("admin user exists")
	}

	logger.Info().Int("count", len(seedCustomers)).Msg("restoring customers")
	for _, name := range seedCustomers {
		if _, err := svc.CreateCustomer(ctx, name); err != nil && !errors.Is(err, core.ErrAlreadyExists) {
			return err
		}
	}

	logger.Info().Int("count", len(seedProducts)).Msg("restoring catalog")
	catalog, err := svc.ListProductTypes(ctx)
	if err != nil {
		return err
	}
	types := make(map[string]core.ProductType)
	for _, pt := range catalog.ProductTypes {
		types[pt.Name] = pt
	}
	for _, sp := range seedProducts {
		pt, ok := types[sp.Type]
		if !ok {
			created, err := svc.CreateProductType(ctx, sp.Type)
			if err != nil {
				return err
			}
			pt = *created
			types[sp.Type] = pt
		}
		if hasVariant(pt, sp.Variant) {
			continue
		}
		price := decimal.NewFromInt(sp.Price)
		p, err := svc.CreateProduct(ctx, app.CreateProductRequest{ProductTypeID: pt.ID, Name: sp.Variant, Price: &price})
		if err != nil {
			return err
		}
		pt.Products = append(pt.Products, *p)
		types[sp.Type] = pt
	}
	return nil
}

func hasVariant(pt core.ProductType, variant string) bool {
	for _, p := range pt.Products {
		if p.Name == variant {
			return true
		}
	}
	return false
}
