package redisx

import "time"

const (
	// Serialized cart document per session: cart:v1:{session_id}
	KeyCart = "cart:v1:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cached active-product counts: count:vendor:{id} / count:category:{id}
	KeyVendorCount   = "count:vendor:%s"
	KeyCategoryCount = "count:category:%s"
)

var (
	TTLCart  = 30 * 24 * time.Hour
	TTLDedup = 48 * time.Hour
)
