package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IPAttemptTracker throttles abusive senders of OTP requests. Entries
// decay after a short quiet period.
type IPAttemptTracker struct {
	attempts     map[string]*IPAttemptInfo
	mu           sync.RWMutex
	cleanupEvery time.Duration
	maxAttempts  int
	window       time.Duration
}

type IPAttemptInfo struct {
	Count       int
	LastAttempt time.Time
}

func NewIPAttemptTracker(maxAttempts int, window time.Duration) *IPAttemptTracker {
	tracker := &IPAttemptTracker{
		attempts:     make(map[string]*IPAttemptInfo),
		cleanupEvery: 5 * time.Minute,
		maxAttempts:  maxAttempts,
		window:       window,
	}

	go tracker.startCleanup()

	return tracker
}

func (t *IPAttemptTracker) startCleanup() {
	ticker := time.NewTicker(t.cleanupEvery)
	defer ticker.Stop()

	for range ticker.C {
		t.cleanOldEntries()
	}
}

func (t *IPAttemptTracker) cleanOldEntries() {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiry := time.Now().Add(-t.window)
	for ip, info := range t.attempts {
		if info.LastAttempt.Before(expiry) {
			delete(t.attempts, ip)
		}
	}
}

// RecordAttempt counts one request and reports whether the caller is
// over budget for the current window.
func (t *IPAttemptTracker) RecordAttempt(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	info, exists := t.attempts[ip]
	if !exists || time.Since(info.LastAttempt) > t.window {
		info = &IPAttemptInfo{}
		t.attempts[ip] = info
	}

	info.Count++
	info.LastAttempt = time.Now()
	return info.Count > t.maxAttempts
}

type RequestMiddleware struct {
	logger         *zap.Logger
	attemptTracker *IPAttemptTracker
}

func NewRequestMiddleware(logger *zap.Logger) *RequestMiddleware {
	return &RequestMiddleware{
		logger:         logger,
		attemptTracker: NewIPAttemptTracker(10, time.Minute),
	}
}

func (rm *RequestMiddleware) ProcessRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		ctx := context.WithValue(c.Request.Context(), "request_id", requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)
		start := time.Now()
		rm.logger.Info("Request started",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()))
		c.Next()
		duration := time.Since(start)
		rm.logger.Info("Request completed",
			zap.String("request_id", requestID),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.Int("size", c.Writer.Size()))
	}
}

// ThrottleOtp caps OTP send requests per client IP. Verification calls
// are not throttled here; the code store enforces its own attempt cap.
func (rm *RequestMiddleware) ThrottleOtp() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if rm.attemptTracker.RecordAttempt(clientIP) {
			rm.logger.Warn("Throttling OTP requests",
				zap.String("client_ip", clientIP),
				zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(429, gin.H{
				"success": false,
				"message": "too many code requests, try again shortly",
				"error":   "rate_limited",
			})
			return
		}
		c.Next()
	}
}

func (rm *RequestMiddleware) RecoverPanic() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID, _ := c.Request.Context().Value("request_id").(string)
				rm.logger.Error("Panic recovered",
					zap.String("request_id", requestID),
					zap.Any("error", err),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(500, gin.H{
					"success": false,
					"message": "internal server error",
					"error":   "internal",
				})
			}
		}()
		c.Next()
	}
}
