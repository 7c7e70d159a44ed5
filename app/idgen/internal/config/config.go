package config

import (
	"github.com/tsfdsong/snowflake/app/pkg/sequencer"
	"github.com/zeromicro/go-zero/rest"
)

type Config struct {
	rest.RestConf
	Sequencer sequencer.Conf
	RateLimit RateLimitConfig
	Breaker   BreakerConfig
	RedisConf RedisConfig
}

type RateLimitConfig struct {
	Enabled    bool `json:",default=false"`
	BatchRate  int  `json:",default=1000"`
	BatchBurst int  `json:",default=2000"`
}

type BreakerConfig struct {
	Enabled bool `json:",default=true"`
}

type RedisConfig struct {
	Host     string `json:",optional"`
	Password string `json:",optional"`
}
