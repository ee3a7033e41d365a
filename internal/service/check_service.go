package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
	"github.com/bruinwatch/bruinwatch-api/pkg/errors"
)

// CheckRequest is the payload for a one-off availability check.
type CheckRequest struct {
	CourseNumber string `json:"course_number"`
	Term         string `json:"term"`
}

// CheckService answers one-off availability checks, with a short-TTL Redis
// cache so dashboard refreshes do not hammer the results page. The scheduler
// tick never goes through here; it always observes the live source.
type CheckService struct {
	resolver CourseResolver
	cache    *redis.Client
	metrics  *MetricsService
	logger   *zap.Logger

	defaultTerm string
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewCheckService creates the check service. cache may be nil, which
// disables caching entirely.
func NewCheckService(
	resolver CourseResolver,
	cache *redis.Client,
	metrics *MetricsService,
	logger *zap.Logger,
	defaultTerm string,
	cacheTTL time.Duration,
) *CheckService {
	return &CheckService{
		resolver:    resolver,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		defaultTerm: defaultTerm,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

// Check resolves live availability for one course in one term.
func (s *CheckService) Check(ctx context.Context, req CheckRequest) (*models.CheckResult, error) {
	course, err := models.NormalizeCourseNumber(req.CourseNumber)
	if err != nil {
		return nil, errors.Clone(errors.ErrValidation, err.Error())
	}
	termInput := req.Term
	if termInput == "" {
		termInput = s.defaultTerm
	}
	term, err := models.NormalizeTerm(termInput)
	if err != nil {
		return nil, errors.Clone(errors.ErrValidation, err.Error())
	}

	cacheKey := fmt.Sprintf("check:%s:%s", term, course)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	statuses, err := s.resolver.Resolve(ctx, term, []string{course})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrResolver.Code, errors.ErrResolver.Status, "course availability lookup failed")
	}
	if len(statuses) == 0 {
		return nil, errors.Clone(errors.ErrNotFound, fmt.Sprintf("COM SCI %s not found in term %s", course, term))
	}

	result := models.NewCheckResult(statuses[0], term, s.now().UTC())
	s.toCache(ctx, cacheKey, &result)
	return &result, nil
}

func (s *CheckService) fromCache(ctx context.Context, key string) *models.CheckResult {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		s.metrics.RecordCacheOperation(false)
		return nil
	}
	var result models.CheckResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Warn("invalid cached check result", zap.String("key", key), zap.Error(err))
		return nil
	}
	s.metrics.RecordCacheOperation(true)
	return &result
}

func (s *CheckService) toCache(ctx context.Context, key string, result *models.CheckResult) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("check result not cached", zap.String("key", key), zap.Error(err))
	}
}
