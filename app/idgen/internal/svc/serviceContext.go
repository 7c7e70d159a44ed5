package svc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tsfdsong/snowflake/app/idgen/internal/config"
	"github.com/tsfdsong/snowflake/app/idgen/internal/middleware"
	"github.com/tsfdsong/snowflake/app/idgen/internal/monitor"
	"github.com/tsfdsong/snowflake/app/pkg/sequencer"
	"github.com/tsfdsong/snowflake/app/pkg/snowflake"
	"github.com/zeromicro/go-zero/core/breaker"
	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"
)

type ServiceContext struct {
	Config       config.Config
	Generator    *snowflake.Generator
	Metrics      rest.Middleware
	RateLimiter  rest.Middleware
	Breaker      rest.Middleware
	RedisClient  *redis.Redis
	BatchLimiter *limit.TokenLimiter
}

func NewServiceContext(c config.Config) *ServiceContext {
	gen := sequencer.MustNewGenerator(c.Sequencer)
	prometheus.MustRegister(monitor.NewGeneratorCollector(gen))

	svcCtx := NewServiceContextWithGenerator(c, gen)

	// 初始化Redis客户端
	if c.RedisConf.Host != "" {
		svcCtx.RedisClient = redis.MustNewRedis(redis.RedisConf{
			Host: c.RedisConf.Host,
			Type: redis.NodeType,
			Pass: c.RedisConf.Password,
		})
		logx.Info("Redis client initialized")
	}

	// 批量发号限流 - go-zero令牌桶，运行中Redis故障时TokenLimiter自动切到进程内限流
	if c.RateLimit.Enabled && svcCtx.RedisClient == nil {
		logx.Errorf("RateLimit enabled but RedisConf.Host is empty, batch rate limit disabled")
	}
	if c.RateLimit.Enabled && svcCtx.RedisClient != nil {
		svcCtx.BatchLimiter = limit.NewTokenLimiter(
			c.RateLimit.BatchRate,
			c.RateLimit.BatchBurst,
			svcCtx.RedisClient,
			"idgen:batch:ratelimit",
		)
		svcCtx.RateLimiter = middleware.NewRateLimitMiddleware(svcCtx.BatchLimiter).Handle
		logx.Infof("Rate limiter initialized: rate=%d, burst=%d", c.RateLimit.BatchRate, c.RateLimit.BatchBurst)
	}

	// 时钟异常持续返回5xx时熔断
	if c.Breaker.Enabled {
		svcCtx.Breaker = middleware.NewBreakerMiddleware(breaker.NewBreaker(breaker.WithName("idgen"))).Handle
		logx.Info("Circuit breaker initialized")
	}

	return svcCtx
}

// NewServiceContextWithGenerator 使用已有生成器，不连接外部依赖
func NewServiceContextWithGenerator(c config.Config, gen *snowflake.Generator) *ServiceContext {
	return &ServiceContext{
		Config:      c,
		Generator:   gen,
		Metrics:     middleware.NewMetricsMiddleware().Handle,
		RateLimiter: middleware.NewRateLimitMiddleware(nil).Handle,
		Breaker:     middleware.NewBreakerMiddleware(nil).Handle,
	}
}
