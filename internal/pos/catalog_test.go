package pos

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

// stubCatalogGateway mirrors stubGateway for the catalog port.
type stubCatalogGateway struct {
	mu sync.Mutex

	fetchProductsFn func(ctx context.Context) ([]Product, error)
	fetchProductFn  func(ctx context.Context, productID int64) (Product, error)
	createProductFn func(ctx context.Context, p NewProduct) (Product, error)
	profitGroupsFn  func(ctx context.Context) ([]ProfitGroup, error)
	storeStatusFn   func(ctx context.Context, vacancyRate *float64, lineLength *int) error

	fetchProductCalls int
}

func (g *stubCatalogGateway) FetchProducts(ctx context.Context) ([]Product, error) {
	if g.fetchProductsFn == nil {
		return nil, &TransportError{Op: "fetch products", Err: errors.New("unexpected call")}
	}
	return g.fetchProductsFn(ctx)
}

func (g *stubCatalogGateway) FetchProduct(ctx context.Context, productID int64) (Product, error) {
	g.mu.Lock()
	g.fetchProductCalls++
	g.mu.Unlock()
	if g.fetchProductFn == nil {
		return Product{}, &TransportError{Op: "fetch product", Err: errors.New("unexpected call")}
	}
	return g.fetchProductFn(ctx, productID)
}

func (g *stubCatalogGateway) CreateProduct(ctx context.Context, p NewProduct) (Product, error) {
	if g.createProductFn == nil {
		return Product{}, &TransportError{Op: "create product", Err: errors.New("unexpected call")}
	}
	return g.createProductFn(ctx, p)
}

func (g *stubCatalogGateway) FetchProfitGroups(ctx context.Context) ([]ProfitGroup, error) {
	if g.profitGroupsFn == nil {
		return nil, &TransportError{Op: "fetch profit groups", Err: errors.New("unexpected call")}
	}
	return g.profitGroupsFn(ctx)
}

func (g *stubCatalogGateway) ReportStoreStatus(ctx context.Context, vacancyRate *float64, lineLength *int) error {
	if g.storeStatusFn == nil {
		return &TransportError{Op: "report store status", Err: errors.New("unexpected call")}
	}
	return g.storeStatusFn(ctx, vacancyRate, lineLength)
}

func TestCatalogRefresh_ReplacesSnapshotWholesale(t *testing.T) {
	batch := []Product{testProduct(1)}
	gw := &stubCatalogGateway{
		fetchProductsFn: func(ctx context.Context) ([]Product, error) {
			return batch, nil
		},
	}
	catalog := NewCatalog(gw, zaptest.NewLogger(t))

	if _, err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := catalog.Products(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	// The next refresh returns a different list; nothing is merged.
	batch = []Product{testProduct(2)}
	if _, err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	got := catalog.Products()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected snapshot replaced, got %+v", got)
	}
}

func TestCatalogRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	fail := false
	gw := &stubCatalogGateway{
		fetchProductsFn: func(ctx context.Context) ([]Product, error) {
			if fail {
				return nil, &TransportError{Op: "fetch products", Err: errors.New("boom")}
			}
			return []Product{testProduct(1)}, nil
		},
	}
	catalog := NewCatalog(gw, zaptest.NewLogger(t))

	if _, err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	fail = true
	if _, err := catalog.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := catalog.Products(); len(got) != 1 {
		t.Errorf("expected previous snapshot kept, got %+v", got)
	}
}

func TestCatalogLookup_FallsBackToBackend(t *testing.T) {
	gw := &stubCatalogGateway{
		fetchProductsFn: func(ctx context.Context) ([]Product, error) {
			return []Product{testProduct(1)}, nil
		},
		fetchProductFn: func(ctx context.Context, productID int64) (Product, error) {
			return testProduct(productID), nil
		},
	}
	catalog := NewCatalog(gw, zaptest.NewLogger(t))
	if _, err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Snapshot hit: no backend call.
	if _, err := catalog.Lookup(context.Background(), 1); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if gw.fetchProductCalls != 0 {
		t.Errorf("expected snapshot hit, got %d backend fetches", gw.fetchProductCalls)
	}

	// Snapshot miss: fetched directly.
	p, err := catalog.Lookup(context.Background(), 42)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if p.ID != 42 || gw.fetchProductCalls != 1 {
		t.Errorf("expected backend fetch for unknown product, got %+v after %d fetches", p, gw.fetchProductCalls)
	}
}

func TestCatalogCreateProduct_AppendsOnSuccess(t *testing.T) {
	gw := &stubCatalogGateway{
		createProductFn: func(ctx context.Context, p NewProduct) (Product, error) {
			if p.Description != nil {
				t.Errorf("expected nil description to stay nil, got %q", *p.Description)
			}
			return Product{
				ID:           9,
				SKU:          p.SKU,
				Name:         p.Name,
				CostPrice:    p.CostPrice,
				BasePrice:    p.BasePrice,
				CurrentPrice: p.BasePrice,
			}, nil
		},
	}
	catalog := NewCatalog(gw, zaptest.NewLogger(t))

	created, err := catalog.CreateProduct(context.Background(), NewProduct{
		Name:      "Tea",
		SKU:       "SKU-9",
		CostPrice: decimal.RequireFromString("1.50"),
		BasePrice: decimal.RequireFromString("3.00"),
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if created.ID != 9 {
		t.Errorf("unexpected created product: %+v", created)
	}
	if got := catalog.Products(); len(got) != 1 || got[0].ID != 9 {
		t.Errorf("expected created product in snapshot, got %+v", got)
	}
}

func TestStoreStatusReport_RemembersReportedValues(t *testing.T) {
	var gotVacancy *float64
	var gotLine *int
	gw := &stubCatalogGateway{
		storeStatusFn: func(ctx context.Context, vacancyRate *float64, lineLength *int) error {
			gotVacancy = vacancyRate
			gotLine = lineLength
			return nil
		},
	}
	status := NewStoreStatus(gw, zaptest.NewLogger(t))

	vacancy := 0.35
	if err := status.Report(context.Background(), &vacancy, nil); err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if gotVacancy == nil || *gotVacancy != 0.35 {
		t.Errorf("expected vacancy rate forwarded, got %v", gotVacancy)
	}
	if gotLine != nil {
		t.Errorf("expected omitted line length, got %v", gotLine)
	}

	lastVacancy, lastLine := status.Last()
	if lastVacancy != 0.35 || lastLine != 0 {
		t.Errorf("unexpected remembered status: %v %v", lastVacancy, lastLine)
	}

	line := 4
	if err := status.Report(context.Background(), nil, &line); err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	lastVacancy, lastLine = status.Last()
	if lastVacancy != 0.35 || lastLine != 4 {
		t.Errorf("expected partial update to keep previous vacancy, got %v %v", lastVacancy, lastLine)
	}
}
