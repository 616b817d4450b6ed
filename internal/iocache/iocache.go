// Package iocache persists channel tables and query history in SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/idescope/internal/contract"
)

// CacheStoreManager manages the table cache and the query history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	table        contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetTableStore returns the channel table CacheStore.
func (mgr *CacheStoreManager) GetTableStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.table
}

// GetHistoryStore returns the query HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
