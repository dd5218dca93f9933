package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/kendall-kelly/route-orders-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-process CacheStore for tests
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	gets    int
	failGet error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet != nil {
		return "", m.failGet
	}
	v, ok := m.entries[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// countingCatalog counts calls to the wrapped catalog
type countingCatalog struct {
	Catalog
	getCalls  int
	listCalls int
}

func (c *countingCatalog) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	c.getCalls++
	return c.Catalog.GetProduct(ctx, id)
}

func (c *countingCatalog) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	c.listCalls++
	return c.Catalog.ListActiveProducts(ctx)
}

func TestGormCatalog(t *testing.T) {
	db := testutil.NewTestDB(t)
	milk := testutil.CreateProduct(t, db, "Milk 1L", "Dairy", "50.00")
	retired := testutil.CreateProduct(t, db, "Old Yogurt", "Dairy", "20.00")
	require.NoError(t, db.Model(retired).Update("active", false).Error)
	catalog := NewGormCatalog(db)
	ctx := context.Background()

	got, err := catalog.GetProduct(ctx, milk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Milk 1L", got.Name)
	assertDecimal(t, "50", got.Price)

	_, err = catalog.GetProduct(ctx, retired.ID)
	assertKind(t, err, KindNotFound)

	active, err := catalog.ListActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, milk.ID, active[0].ID)
}

func TestCachedCatalog_CachesListing(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateProduct(t, db, "Milk 1L", "Dairy", "50.00")
	inner := &countingCatalog{Catalog: NewGormCatalog(db)}
	catalog := NewCachedCatalog(inner, newMemoryCache(), time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		products, err := catalog.ListActiveProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Milk 1L", products[0].Name)
		assertDecimal(t, "50", products[0].Price)
	}
	assert.Equal(t, 1, inner.listCalls)
}

func TestCachedCatalog_ProductLookupsSkipCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	milk := testutil.CreateProduct(t, db, "Milk 1L", "Dairy", "50.00")
	inner := &countingCatalog{Catalog: NewGormCatalog(db)}
	cache := newMemoryCache()
	catalog := NewCachedCatalog(inner, cache, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := catalog.GetProduct(ctx, milk.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.getCalls)
	assert.Zero(t, cache.gets)

	_, err := catalog.GetProduct(ctx, 404)
	assertKind(t, err, KindNotFound)
}

func TestCachedCatalog_PricesFollowCatalogChanges(t *testing.T) {
	f := newFixture(t)
	catalog := NewCachedCatalog(NewGormCatalog(f.db), newMemoryCache(), time.Minute)
	validator := NewOrderValidator(f.db, catalog)
	ctx := context.Background()

	// warm every cached path
	_, err := catalog.ListActiveProducts(ctx)
	require.NoError(t, err)
	_, err = catalog.GetProduct(ctx, f.milk.ID)
	require.NoError(t, err)
	_, err = validator.Validate(ctx, ValidateOrderRequest{
		CustomerID: f.customer.ID, OrderType: models.OrderTypeAM, OrderDate: "2024-03-15",
		Items: []LineItemInput{item(f.milk.ID, 2)},
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.milk.ID).Update("price", *dec("70.00")).Error)
	repriced, err := validator.Validate(ctx, ValidateOrderRequest{
		CustomerID: f.customer.ID, OrderType: models.OrderTypeAM, OrderDate: "2024-03-15",
		Items: []LineItemInput{item(f.milk.ID, 2)},
	})
	require.NoError(t, err)
	assertDecimal(t, "140", repriced.TotalAmount)

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.milk.ID).Update("active", false).Error)
	_, err = validator.Validate(ctx, ValidateOrderRequest{
		CustomerID: f.customer.ID, OrderType: models.OrderTypeAM, OrderDate: "2024-03-15",
		Items: []LineItemInput{item(f.milk.ID, 2)},
	})
	assertKind(t, err, KindInvalidArgument)
	assert.Equal(t, "INVALID_PRODUCTS", err.(*OrderError).Code)

	editor := NewOrderEditor(f.db, catalog, "")
	order := f.placeOrder(t, f.customer.ID, models.OrderTypePM, "2024-03-15", item(f.bread.ID, 1))
	_, err = editor.ApplyEdit(ctx, EditOrderRequest{
		CustomerID: f.customer.ID,
		OrderID:    order.ID,
		Items:      []LineItemEdit{{ProductID: f.milk.ID, Quantity: QuantityOf(1), IsNew: true}},
	})
	assertKind(t, err, KindNotFound)
}

func TestCachedCatalog_FallsThroughOnCacheErrors(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateProduct(t, db, "Milk 1L", "Dairy", "50.00")
	inner := &countingCatalog{Catalog: NewGormCatalog(db)}
	cache := newMemoryCache()
	cache.failGet = errors.New("connection refused")
	catalog := NewCachedCatalog(inner, cache, time.Minute)

	for i := 0; i < 2; i++ {
		products, err := catalog.ListActiveProducts(context.Background())
		require.NoError(t, err)
		assert.Len(t, products, 1)
	}
	assert.Equal(t, 2, inner.listCalls)
}

func TestInitCatalog(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { SetCatalog(nil) })

	_, plain := InitCatalog(db, nil, time.Minute).(*GormCatalog)
	assert.True(t, plain)

	_, cached := InitCatalog(db, newMemoryCache(), time.Minute).(*CachedCatalog)
	assert.True(t, cached)
	assert.NotNil(t, GetCatalog())
}

func TestNewRedisCache_RejectsBadURL(t *testing.T) {
	_, err := NewRedisCache("not-a-redis-url")
	assert.Error(t, err)

	cache, err := NewRedisCache("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.NoError(t, cache.Close())
}
