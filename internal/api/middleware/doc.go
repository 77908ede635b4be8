// Package middleware provides production-ready HTTP middleware for the trace service.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//   - GlobalRateLimit: Shared token bucket for expensive endpoints
//
// CORS Configuration:
//   - AllowOrigins: Permitted origin domains
//   - AllowMethods: HTTP methods (GET, POST, etc.)
//   - AllowHeaders: Request headers
//   - ExposeHeaders: Response headers readable by browser clients
//   - MaxAge: Preflight cache duration
//
// Rate Limiting:
//   - Per-IP tracking with automatic cleanup
//   - Token bucket algorithm
//   - Configurable RPS and burst capacity
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
