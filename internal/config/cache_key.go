package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SyncLockKey returns the single-flight lock key guarding Resync runs.
// Only one sync may hold it at a time.
func (r *CacheKeyStruct) SyncLockKey() string {
	return "sync:lock"
}

// SyncLastReportKey returns the cache key holding the most recent sync report.
func (r *CacheKeyStruct) SyncLastReportKey() string {
	return "sync:last_report"
}

// AdminSessionKey returns the cache key for an admin's login session.
func (r *CacheKeyStruct) AdminSessionKey(adminID int) string {
	return fmt.Sprintf("login:admin:%d", adminID)
}

var CacheKey = NewCacheKeyStruct()
