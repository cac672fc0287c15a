package config

import "time"

// Budget allows Burst requests at once, then one more every Every.
type Budget struct {
    Burst int
    Every time.Duration
}

// RateLimitConfig gives every caller two budgets: one for reads (GET and
// HEAD) and a tighter one for writes.
type RateLimitConfig struct {
    Enabled bool
    Prefix  string // Redis key prefix
    Read    Budget
    Write   Budget
}

// LoadRateLimitConfig reads RATE_LIMIT_ENABLED, RATE_LIMIT_PREFIX and the
// RATE_LIMIT_{READ,WRITE}_{BURST,EVERY} pairs.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
        Read:    loadBudget("RATE_LIMIT_READ", Budget{Burst: 60, Every: time.Second}),
        Write:   loadBudget("RATE_LIMIT_WRITE", Budget{Burst: 20, Every: 3 * time.Second}),
    }
}

// loadBudget keeps the default for any value that is not positive.
func loadBudget(prefix string, def Budget) Budget {
    b := Budget{
        Burst: envInt(prefix+"_BURST", def.Burst),
        Every: envDur(prefix+"_EVERY", def.Every),
    }
    if b.Burst < 1 {
        b.Burst = def.Burst
    }
    if b.Every <= 0 {
        b.Every = def.Every
    }
    return b
}
