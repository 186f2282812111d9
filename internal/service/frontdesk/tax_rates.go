package frontdesk

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dumeirei/hotel-frontdesk/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

const taxRatesCacheName = "tax_rates"

// TaxRatesCacheKey 税率快照缓存键
var TaxRatesCacheKey = cache.BuildKey(cache.KeyPrefixTaxRates, "rates")

// TaxConfigStore 税率持久化
type TaxConfigStore interface {
	GetByGroup(ctx context.Context, group string) ([]*models.SystemConfig, error)
	BatchUpsert(ctx context.Context, configs []*models.SystemConfig) error
}

// TaxRateProvider 读取税率：Redis 缓存 → system_configs → 配置兜底
type TaxRateProvider struct {
	store    TaxConfigStore
	client   redis.UniversalClient
	fallback TaxRates
	ttl      time.Duration
	metrics  *metrics.Metrics
	group    singleflight.Group
}

// NewTaxRateProvider 创建税率读取器，client 为 nil 时不使用缓存
func NewTaxRateProvider(store TaxConfigStore, client redis.UniversalClient, fallback TaxRates, ttl time.Duration, m *metrics.Metrics) *TaxRateProvider {
	if !fallback.Valid() || fallback == (TaxRates{}) {
		fallback = DefaultTaxRates()
	}
	return &TaxRateProvider{
		store:    store,
		client:   client,
		fallback: fallback,
		ttl:      ttl,
		metrics:  m,
	}
}

// GetTaxRates 获取当前税率，读取失败时返回兜底税率，不返回错误
func (p *TaxRateProvider) GetTaxRates(ctx context.Context) TaxRates {
	if p.client != nil {
		var rates TaxRates
		err := cache.GetJSON(ctx, p.client, TaxRatesCacheKey, &rates)
		if err == nil {
			p.metrics.RecordCacheHit(taxRatesCacheName)
			return rates
		}
		if !stderrors.Is(err, redis.Nil) {
			logger.Warn("Failed to read tax rate cache", zap.Error(err))
		}
		p.metrics.RecordCacheMiss(taxRatesCacheName)
	}

	v, err, _ := p.group.Do(TaxRatesCacheKey, func() (interface{}, error) {
		rates, err := p.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if p.client != nil {
			if err := cache.SetJSON(ctx, p.client, TaxRatesCacheKey, rates, p.ttl); err != nil {
				logger.Warn("Failed to write tax rate cache", zap.Error(err))
			}
		}
		return rates, nil
	})
	if err != nil {
		logger.Warn("Failed to load tax rates, using fallback", zap.Error(err))
		return p.fallback
	}
	return v.(TaxRates)
}

// load 从 system_configs 读取税率，缺失或非法的项使用兜底值
func (p *TaxRateProvider) load(ctx context.Context) (TaxRates, error) {
	rows, err := p.store.GetByGroup(ctx, models.ConfigGroupTax)
	if err != nil {
		return TaxRates{}, err
	}

	rates := p.fallback
	for _, row := range rows {
		v, err := strconv.ParseFloat(row.Value, 64)
		if err != nil || v < 0 || v > 100 {
			logger.Warn("Ignoring invalid tax rate config", zap.String("key", row.Key), zap.String("value", row.Value))
			continue
		}
		switch row.Key {
		case models.ConfigKeyGST:
			rates.GST = v
		case models.ConfigKeyCGST:
			rates.CGST = v
		case models.ConfigKeySGST:
			rates.SGST = v
		case models.ConfigKeyLuxuryTax:
			rates.LuxuryTax = v
		case models.ConfigKeyServiceCharge:
			rates.ServiceCharge = v
		}
	}
	return rates, nil
}

// SetTaxRates 保存税率并清除缓存
func (p *TaxRateProvider) SetTaxRates(ctx context.Context, rates TaxRates) error {
	if !rates.Valid() {
		return errors.ErrInvalidParams.WithMessage("税率必须在 0 到 100 之间")
	}

	values := map[string]float64{
		models.ConfigKeyGST:           rates.GST,
		models.ConfigKeyCGST:          rates.CGST,
		models.ConfigKeySGST:          rates.SGST,
		models.ConfigKeyLuxuryTax:     rates.LuxuryTax,
		models.ConfigKeyServiceCharge: rates.ServiceCharge,
	}
	configs := make([]*models.SystemConfig, 0, len(values))
	for _, key := range []string{
		models.ConfigKeyGST, models.ConfigKeyCGST, models.ConfigKeySGST,
		models.ConfigKeyLuxuryTax, models.ConfigKeyServiceCharge,
	} {
		configs = append(configs, &models.SystemConfig{
			Group: models.ConfigGroupTax,
			Key:   key,
			Value: strconv.FormatFloat(values[key], 'f', -1, 64),
			Type:  models.ConfigTypeNumber,
		})
	}

	if err := p.store.BatchUpsert(ctx, configs); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	if p.client != nil {
		if err := p.client.Del(ctx, TaxRatesCacheKey).Err(); err != nil {
			logger.Warn("Failed to invalidate tax rate cache", zap.Error(err))
		}
	}
	logger.Info("Tax rates updated",
		logger.Module("frontdesk"),
		logger.Action("set_tax_rates"),
		zap.Float64("gst", rates.GST),
		zap.Float64("cgst", rates.CGST),
		zap.Float64("sgst", rates.SGST),
		zap.Float64("luxury_tax", rates.LuxuryTax),
		zap.Float64("service_charge", rates.ServiceCharge),
	)
	return nil
}
