package accounts

import "go.uber.org/ratelimit"

type ServiceOption func(*ServiceImpl)

func WithWriteRatelimiter(limiter ratelimit.Limiter) ServiceOption {
	return func(svc *ServiceImpl) {
		svc.writeRateLimiter = limiter
	}
}
