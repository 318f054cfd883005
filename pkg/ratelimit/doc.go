// Package ratelimit throttles navigation against the target site.
//
// The crawler makes one request at a time and pauses for a fixed interval
// after every navigation, whether the navigation succeeded or not:
//
//	limiter := ratelimit.NewFixedDelay(time.Second)
//	_ = limiter.Wait(ctx)
//
// There is no back-off: the interval never grows in response to errors or
// server hints.
package ratelimit
