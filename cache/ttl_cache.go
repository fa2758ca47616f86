// Package cache เป็น TTL cache ในโปรเซส แบบ best-effort
// ใช้พักผลรวมค่าฟิลเตอร์ที่คำนวณแพง ยอมรับข้อมูลเก่าได้ตามอายุ TTL
package cache

import (
	"sync"
	"time"
)

// Store = ความสามารถที่ handler ต้องการ ฉีดเข้าไปเพื่อให้สลับเป็น
// cache ภายนอกหรือปิดทิ้งตอนเทสได้
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	SweepExpired()
}

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache = map + mutex ธรรมดา อายุคงที่ต่อ entry
// เกิน sweepAt entry เมื่อไหร่จะไล่ลบของหมดอายุตอน Set
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	sweepAt int
	now     func() time.Time // override ได้ในเทส
}

func NewTTL(ttl time.Duration, sweepAt int) *TTLCache {
	return &TTLCache{
		entries: map[string]entry{},
		ttl:     ttl,
		sweepAt: sweepAt,
		now:     time.Now,
	}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
	if len(c.entries) > c.sweepAt {
		c.sweepLocked()
	}
}

// SweepExpired ลบ entry ที่หมดอายุทั้งหมด
func (c *TTLCache) SweepExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
}

func (c *TTLCache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Len ใช้ในเทส
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
