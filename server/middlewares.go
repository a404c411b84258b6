package server

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/LagrangeDev/obridge/global"
	"github.com/LagrangeDev/obridge/modules/api"
)

// rateLimit API 调用频率限制中间件
func rateLimit(frequency float64, bucket int) api.Handler {
	limiter := rate.NewLimiter(rate.Limit(frequency), bucket)
	return func(_ string, _ api.Getter) global.MSG {
		_ = limiter.Wait(context.Background())
		return nil
	}
}
