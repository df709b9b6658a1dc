// Package cache provides the append-only store used for decoded assets.
//
// A Store never evicts: once a value is cached under a key it stays for the
// lifetime of the Store. An optional limit stops the Store from growing; past
// it, loads still succeed but their values are not retained.
//
//	store := cache.New[string, *Image](0)
//	img, err := store.GetOrLoad(src, func() (*Image, error) { return decode(src) })
//
// # Thread Safety
//
// Store is safe for concurrent use and must not be copied after creation
// (it contains a mutex).
package cache
