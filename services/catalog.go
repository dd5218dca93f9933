package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/route-orders-api/logger"
	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Catalog is the read-only product lookup used to validate and price orders
type Catalog interface {
	// GetProduct returns the active product with the given id, or a NotFound error
	GetProduct(ctx context.Context, id uint) (*models.Product, error)

	// ListActiveProducts returns every product that can currently be ordered
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
}

// GormCatalog reads the products table
type GormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog creates a catalog backed by the given database
func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// GetProduct returns an active product by id
func (c *GormCatalog) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := c.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("PRODUCT_NOT_FOUND", "Product %d not found", id)
		}
		return nil, storageError(ctx, "load product", err)
	}
	return &product, nil
}

// ListActiveProducts returns active products ordered by id
func (c *GormCatalog) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&products).Error; err != nil {
		return nil, storageError(ctx, "list products", err)
	}
	return products, nil
}

// CacheStore is the subset of a key/value cache the catalog needs.
// Get returns ErrCacheMiss when the key is absent.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// ErrCacheMiss is returned by CacheStore.Get for absent keys
var ErrCacheMiss = errors.New("cache miss")

// RedisCache adapts a go-redis client to CacheStore
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache parses a redis:// URL and returns a cache backed by it
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// Ping checks connectivity
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the cached value for key
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

// Set stores value under key for ttl
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying connection pool
func (r *RedisCache) Close() error {
	return r.client.Close()
}

const activeProductsKey = "catalog:active"

// CachedCatalog caches the active product listing shown to customers in front
// of another Catalog. Single product lookups used for pricing are not cached.
// Cache errors are logged and fall through to the wrapped catalog.
type CachedCatalog struct {
	next  Catalog
	cache CacheStore
	ttl   time.Duration
}

// NewCachedCatalog wraps next with a read-through cache
func NewCachedCatalog(next Catalog, cache CacheStore, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache, ttl: ttl}
}

// GetProduct always reads the wrapped catalog so orders are priced at the
// current catalog price
func (c *CachedCatalog) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return c.next.GetProduct(ctx, id)
}

// ListActiveProducts returns the active product list from cache or the wrapped catalog
func (c *CachedCatalog) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if c.lookup(ctx, activeProductsKey, &products) {
		return products, nil
	}

	products, err := c.next.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, activeProductsKey, products)
	return products, nil
}

func (c *CachedCatalog) lookup(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			logger.FromContext(ctx).Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logger.FromContext(ctx).Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedCatalog) store(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, string(raw), c.ttl); err != nil {
		logger.FromContext(ctx).Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

var catalogInstance Catalog

// InitCatalog sets up the catalog for the given database, adding the redis
// cache when cache is non-nil
func InitCatalog(db *gorm.DB, cache CacheStore, ttl time.Duration) Catalog {
	var c Catalog = NewGormCatalog(db)
	if cache != nil {
		c = NewCachedCatalog(c, cache, ttl)
	}
	catalogInstance = c
	return catalogInstance
}

// GetCatalog returns the initialized catalog instance
func GetCatalog() Catalog {
	return catalogInstance
}

// SetCatalog sets the catalog instance (primarily for testing)
func SetCatalog(c Catalog) {
	catalogInstance = c
}
