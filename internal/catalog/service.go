package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/marketcat/storefront-api/internal/redisx"
)

// Repository is what the service needs from storage.
type Repository interface {
	ListActiveVendors(ctx context.Context) ([]Vendor, error)
	ListActiveCategories(ctx context.Context) ([]Category, error)
	ListProducts(ctx context.Context, f Filter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CountProductsByVendor(ctx context.Context, vendorID string) (int, error)
	CountProductsByCategory(ctx context.Context, categoryID string) (int, error)
}

type Service struct {
	repo     Repository
	rdb      *redis.Client // nil disables count caching
	countTTL time.Duration
	sfg      singleflight.Group // prevents count-query stampede per key
}

func NewService(repo Repository, rdb *redis.Client, countTTL time.Duration) *Service {
	return &Service{repo: repo, rdb: rdb, countTTL: countTTL}
}

func (s *Service) ListActiveVendors(ctx context.Context) ([]Vendor, error) {
	return s.repo.ListActiveVendors(ctx)
}

func (s *Service) ListActiveCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListActiveCategories(ctx)
}

func (s *Service) ListProducts(ctx context.Context, f Filter) ([]Product, error) {
	return s.repo.ListProducts(ctx, f)
}

func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) VendorProductCount(ctx context.Context, vendorID string) (int, error) {
	key := fmt.Sprintf(redisx.KeyVendorCount, vendorID)
	return s.cachedCount(ctx, key, func() (int, error) {
		return s.repo.CountProductsByVendor(ctx, vendorID)
	})
}

func (s *Service) CategoryProductCount(ctx context.Context, categoryID string) (int, error) {
	key := fmt.Sprintf(redisx.KeyCategoryCount, categoryID)
	return s.cachedCount(ctx, key, func() (int, error) {
		return s.repo.CountProductsByCategory(ctx, categoryID)
	})
}

// cachedCount is cache-aside over Redis with singleflight around the miss
// path. Cache failures are logged and the count is served from the repo.
func (s *Service) cachedCount(ctx context.Context, key string, count func() (int, error)) (int, error) {
	v, err, _ := s.sfg.Do(key, func() (any, error) {
		if s.rdb != nil {
			raw, err := s.rdb.Get(ctx, key).Result()
			if err == nil {
				if n, convErr := strconv.Atoi(raw); convErr == nil {
					return n, nil
				}
			} else if err != redis.Nil {
				logrus.WithField("key", key).WithError(err).Debug("count cache get failed")
			}
		}

		n, err := count()
		if err != nil {
			return 0, err
		}

		if s.rdb != nil {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := s.rdb.Set(ctx, key, strconv.Itoa(n), s.countTTL).Err(); err != nil {
					logrus.WithField("key", key).WithError(err).Debug("count cache set failed")
				}
			}()
		}
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}
