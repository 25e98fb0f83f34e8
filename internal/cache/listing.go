package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const listingVersionKey = "listings:version"

// ListingQueryKey 公开库存列表的查询维度
type ListingQueryKey struct {
	SellerID uint
	Search   string
	Page     int
	PageSize int
}

// listingPageKey 缓存键携带版本号，库存变更后只需递增版本即可整体失效
func listingPageKey(version int64, q ListingQueryKey) string {
	raw := fmt.Sprintf("%d|%s|%d|%d", q.SellerID, strings.ToLower(strings.TrimSpace(q.Search)), q.Page, q.PageSize)
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("listings:v%d:%s", version, hex.EncodeToString(sum[:8]))
}

// GetListingPage 读取公开库存列表缓存
func GetListingPage(ctx context.Context, q ListingQueryKey, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	version, err := GetInt64(ctx, listingVersionKey)
	if err != nil {
		return false, err
	}
	return GetJSON(ctx, listingPageKey(version, q), dest)
}

// SetListingPage 写入公开库存列表缓存
func SetListingPage(ctx context.Context, q ListingQueryKey, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	version, err := GetInt64(ctx, listingVersionKey)
	if err != nil {
		return err
	}
	return SetJSON(ctx, listingPageKey(version, q), value, ttl)
}

// InvalidateListings 使全部库存列表缓存失效
func InvalidateListings(ctx context.Context) error {
	_, err := Incr(ctx, listingVersionKey)
	return err
}
