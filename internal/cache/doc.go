// Package cache provides the report cache and the fixed-window rate limiter
// used by the HTTP layer. RedisStore is used when a Redis URL is configured;
// MemoryStore is the single-process fallback, bounded by an LRU.
package cache
