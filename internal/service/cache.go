// cache.go — LRU-кэш карточек проектов с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// cachedDetails — карточка проекта и версия хранилища, из которой она собрана.
type cachedDetails struct {
	version uint64
	details *model.ProjectDetails
}

// CacheService — LRU-кэш ProjectDetails с автоматическим TTL.
// Запись считается устаревшей не только по TTL, но и при смене версии
// хранилища, поэтому чтение, начатое до мутации, не вернёт старые данные.
type CacheService struct {
	cache   *expirable.LRU[string, cachedDetails]
	metrics *Metrics
}

// NewCacheService создаёт кэш с указанным максимальным размером и TTL.
func NewCacheService(maxSize int, ttl time.Duration, metrics *Metrics) *CacheService {
	return &CacheService{
		cache:   expirable.NewLRU[string, cachedDetails](maxSize, nil, ttl),
		metrics: metrics,
	}
}

// Get возвращает карточку проекта, собранную из версии version.
// Обновляет метрики hit/miss.
func (c *CacheService) Get(projectID string, version uint64) (*model.ProjectDetails, bool) {
	val, ok := c.cache.Get(projectID)
	if ok && val.version == version {
		c.metrics.DetailsCacheHits.Inc()
		return val.details, true
	}
	c.metrics.DetailsCacheMisses.Inc()
	return nil, false
}

// Set добавляет или обновляет карточку проекта.
func (c *CacheService) Set(projectID string, version uint64, details *model.ProjectDetails) {
	c.cache.Add(projectID, cachedDetails{version: version, details: details})
}

// Purge удаляет все записи. Вызывается после каждой успешной мутации.
func (c *CacheService) Purge() {
	c.cache.Purge()
}

// Len возвращает количество записей в кэше.
func (c *CacheService) Len() int {
	return c.cache.Len()
}
