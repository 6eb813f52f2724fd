package main

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateLimit             = 30
	cooldown              = time.Minute
	maxConcurrentRequests = 2
)

var limiter = rate.NewLimiter(rate.Every(cooldown/rateLimit), 1)

var concurrentReqs = make(chan struct{}, maxConcurrentRequests)

func init() {
	for range maxConcurrentRequests {
		concurrentReqs <- struct{}{}
	}
}

// GetToken blocks until a request slot is free and returns its release func.
func GetToken() func() {
	<-concurrentReqs
	return func() {
		concurrentReqs <- struct{}{}
	}
}

// Throttle waits for the shared request budget of rateLimit per cooldown.
func Throttle(ctx context.Context) error {
	return limiter.Wait(ctx)
}
