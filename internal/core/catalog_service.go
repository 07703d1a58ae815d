package core

import (
	"context"
	"fmt"
	"time"
)

// CatalogService manages product types, products and their price histories.
type CatalogService interface {
	CreateProductType(ctx context.Context, name string) (*ProductType, error)
	RenameProductType(ctx context.Context, productTypeID int, name string) (*ProductType, error)
	// ListProductTypes returns every type with its products, each carrying its current price.
	ListProductTypes(ctx context.Context) ([]ProductType, error)
	DeleteProductType(ctx context.Context, productTypeID int) error

	// CreateProduct adds a variant; a non-nil price starts its history today.
	CreateProduct(ctx context.Context, productTypeID int, name string, price *int64) (*Product, error)
	// UpdateProduct renames a variant; a non-nil price that differs from the
	// current one is written as today's price.
	UpdateProduct(ctx context.Context, productID int, name string, price *int64) (*Product, error)
	GetProduct(ctx context.Context, productID int) (*Product, error)
	DeleteProduct(ctx context.Context, productID int) error

	// AddPrice appends a history entry. A nil date means today.
	AddPrice(ctx context.Context, productID int, price int64, date *time.Time) (*Price, error)
	// SetPriceToday updates today's entry, creating it when there is none.
	SetPriceToday(ctx context.Context, productID int, price int64) (*Price, error)
	// PriceHistory returns the history ordered by date, then id.
	PriceHistory(ctx context.Context, productID int) ([]Price, error)
	PriceAt(ctx context.Context, productID int, asOf time.Time) (int64, error)
}

type catalogService struct {
	store    Store
	resolver *PriceResolver
}

func NewCatalogService(store Store) CatalogService {
	return &catalogService{store: store, resolver: NewPriceResolver(store)}
}

func checkPrice(price int64) error {
	if price < 0 {
		return ValidationError{Field: "price", Message: "must not be negative"}
	}
	return checkAmount("price", price)
}

func (s *catalogService) CreateProductType(ctx context.Context, name string) (*ProductType, error) {
	name, err := cleanName("name", name, true)
	if err != nil {
		return nil, err
	}
	pt := &ProductType{Name: name}
	if err := s.store.CreateProductType(ctx, pt); err != nil {
		return nil, fmt.Errorf("failed to create product type %q: %w", name, err)
	}
	return pt, nil
}

func (s *catalogService) RenameProductType(ctx context.Context, productTypeID int, name string) (*ProductType, error) {
	name, err := cleanName("name", name, true)
	if err != nil {
		return nil, err
	}
	pt, err := s.store.GetProductType(ctx, productTypeID)
	if err != nil {
		return nil, err
	}
	pt.Name = name
	if err := s.store.UpdateProductType(ctx, pt); err != nil {
		return nil, fmt.Errorf("failed to rename product type %d: %w", productTypeID, err)
	}
	return pt, nil
}

func (s *catalogService) ListProductTypes(ctx context.Context) ([]ProductType, error) {
	types, err := s.store.ListProductTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list product types: %w", err)
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	byType := make(map[int][]Product, len(types))
	for _, p := range products {
		prices, err := s.store.Prices(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load prices of product %d: %w", p.ID, err)
		}
		p.CurrentPrice = CurrentPrice(prices)
		byType[p.ProductTypeID] = append(byType[p.ProductTypeID], p)
	}
	for i := range types {
		types[i].Products = byType[types[i].ID]
	}
	return types, nil
}

func (s *catalogService) DeleteProductType(ctx context.Context, productTypeID int) error {
	return s.store.DeleteProductType(ctx, productTypeID)
}

func (s *catalogService) CreateProduct(ctx context.Context, productTypeID int, name string, price *int64) (*Product, error) {
	name, err := cleanName("name", name, false)
	if err != nil {
		return nil, err
	}
	if price != nil {
		if err := checkPrice(*price); err != nil {
			return nil, err
		}
	}

	var created *Product
	err = s.store.InTx(ctx, func(tx Store) error {
		pt, err := tx.GetProductType(ctx, productTypeID)
		if err != nil {
			return err
		}
		p := &Product{ProductTypeID: pt.ID, TypeName: pt.Name, Name: name}
		if err := tx.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		if price != nil {
			if err := tx.CreatePrice(ctx, &Price{ProductID: p.ID, Price: *price, Date: Today()}); err != nil {
				return fmt.Errorf("failed to record initial price: %w", err)
			}
			p.CurrentPrice = *price
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productID int, name string, price *int64) (*Product, error) {
	name, err := cleanName("name", name, false)
	if err != nil {
		return nil, err
	}
	if price != nil {
		if err := checkPrice(*price); err != nil {
			return nil, err
		}
	}

	var updated *Product
	err = s.store.InTx(ctx, func(tx Store) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		p.Name = name
		if err := tx.UpdateProduct(ctx, p); err != nil {
			return fmt.Errorf("failed to update product %d: %w", productID, err)
		}
		prices, err := tx.Prices(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to load prices of product %d: %w", productID, err)
		}
		p.CurrentPrice = CurrentPrice(prices)
		if price != nil && (len(prices) == 0 || *price != p.CurrentPrice) {
			if err := tx.UpsertPrice(ctx, &Price{ProductID: productID, Price: *price, Date: Today()}); err != nil {
				return fmt.Errorf("failed to set price of product %d: %w", productID, err)
			}
			p.CurrentPrice = *price
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID int) (*Product, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	prices, err := s.store.Prices(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices of product %d: %w", productID, err)
	}
	p.CurrentPrice = CurrentPrice(prices)
	return p, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID int) error {
	return s.store.DeleteProduct(ctx, productID)
}

func (s *catalogService) AddPrice(ctx context.Context, productID int, price int64, date *time.Time) (*Price, error) {
	if err := checkPrice(price); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	p := &Price{ProductID: productID, Price: price, Date: Today()}
	if date != nil {
		p.Date = Day(*date)
	}
	if err := s.store.CreatePrice(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to add price to product %d: %w", productID, err)
	}
	return p, nil
}

func (s *catalogService) SetPriceToday(ctx context.Context, productID int, price int64) (*Price, error) {
	if err := checkPrice(price); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	p := &Price{ProductID: productID, Price: price, Date: Today()}
	if err := s.store.UpsertPrice(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to set price of product %d: %w", productID, err)
	}
	return p, nil
}

func (s *catalogService) PriceHistory(ctx context.Context, productID int) ([]Price, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	prices, err := s.store.Prices(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices of product %d: %w", productID, err)
	}
	SortPrices(prices)
	return prices, nil
}

func (s *catalogService) PriceAt(ctx context.Context, productID int, asOf time.Time) (int64, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return 0, err
	}
	return s.resolver.PriceAt(ctx, productID, asOf)
}
