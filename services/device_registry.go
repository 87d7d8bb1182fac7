package services

import (
	"log"
	"sync"
	"time"

	"reward-calibration-engine/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceRegistry tracks which users have claimed from which device
// fingerprint. It is mutated only by the trust scorer's registration
// step and read for the multi-account signal.
type DeviceRegistry interface {
	Register(fingerprint, userID string, now time.Time) error
	DistinctUsers(fingerprint string) (int, error)
	Sweep(now time.Time) int
}

// registryIdleTTL is how long a fingerprint association survives without
// being seen before the sweep evicts it.
const registryIdleTTL = 24 * time.Hour

// --- In-memory registry (tests, single-instance deployments) ---

type memoryDeviceEntry struct {
	users    map[string]struct{}
	lastSeen time.Time
}

type MemoryDeviceRegistry struct {
	mu      sync.Mutex
	devices map[string]*memoryDeviceEntry
}

func NewMemoryDeviceRegistry() *MemoryDeviceRegistry {
	return &MemoryDeviceRegistry{devices: make(map[string]*memoryDeviceEntry)}
}

func (r *MemoryDeviceRegistry) Register(fingerprint, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.devices[fingerprint]
	if !ok {
		entry = &memoryDeviceEntry{users: make(map[string]struct{})}
		r.devices[fingerprint] = entry
	}
	entry.users[userID] = struct{}{}
	entry.lastSeen = now
	return nil
}

func (r *MemoryDeviceRegistry) DistinctUsers(fingerprint string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.devices[fingerprint]
	if !ok {
		return 0, nil
	}
	return len(entry.users), nil
}

func (r *MemoryDeviceRegistry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for fp, entry := range r.devices {
		if now.Sub(entry.lastSeen) > registryIdleTTL {
			delete(r.devices, fp)
			removed++
		}
	}
	return removed
}

// --- GORM-backed registry (production wiring) ---

type GormDeviceRegistry struct {
	DB *gorm.DB
}

func NewGormDeviceRegistry(db *gorm.DB) *GormDeviceRegistry {
	return &GormDeviceRegistry{DB: db}
}

func (r *GormDeviceRegistry) Register(fingerprint, userID string, now time.Time) error {
	link := models.DeviceFingerprintLink{
		Fingerprint:    fingerprint,
		ExternalUserID: userID,
		LastSeenAt:     now,
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fingerprint"}, {Name: "external_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at"}),
	}).Create(&link).Error
}

func (r *GormDeviceRegistry) DistinctUsers(fingerprint string) (int, error) {
	var count int64
	err := r.DB.Model(&models.DeviceFingerprintLink{}).
		Where("fingerprint = ?", fingerprint).
		Count(&count).Error
	return int(count), err
}

func (r *GormDeviceRegistry) Sweep(now time.Time) int {
	cutoff := now.Add(-registryIdleTTL)
	result := r.DB.Where("last_seen_at < ?", cutoff).
		Delete(&models.DeviceFingerprintLink{})
	if result.Error != nil {
		log.Printf("[Registry] sweep failed: %v", result.Error)
		return 0
	}
	return int(result.RowsAffected)
}
