package testutil

import (
	"context"

	"github.com/freegames/claimer/internal/cache"
	"github.com/freegames/claimer/internal/config"
	"github.com/freegames/claimer/internal/logger"
	"github.com/stretchr/testify/suite"
)

// BaseTestSuite provides common setup for service suites: a default
// configuration, a silent logger and a fresh run-scoped cache.
type BaseTestSuite struct {
	suite.Suite
	ctx    context.Context
	cfg    *config.Configuration
	logger *logger.Logger
	cache  cache.Cache
}

// SetupTest initializes the base components
func (s *BaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = config.GetDefaultConfig()
	s.logger = logger.NewNopLogger()
	s.cache = cache.NewInMemoryCache()
}

func (s *BaseTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseTestSuite) GetCache() cache.Cache {
	return s.cache
}
