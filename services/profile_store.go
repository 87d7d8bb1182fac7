package services

import (
	"sync"
	"time"

	"reward-calibration-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileStore is the injected persistence boundary for daily state and
// claim audit rows. The engine core stays pure; production wiring backs
// this with Postgres and tests with the in-memory store.
type ProfileStore interface {
	// EnsureState loads the user's daily state, creating it on first claim.
	EnsureState(userID string) (*models.UserDailyState, error)
	// SaveOutcome persists the patched state and its audit row atomically.
	SaveOutcome(state *models.UserDailyState, record *models.ClaimRecord) error
	// RecentClaims returns the newest audit rows for a user.
	RecentClaims(userID string, limit int) ([]models.ClaimRecord, error)
	// PruneClaims deletes audit rows created before the cutoff.
	PruneClaims(before time.Time) (int64, error)
}

// --- GORM-backed store ---

type GormProfileStore struct {
	DB *gorm.DB
}

func NewGormProfileStore(db *gorm.DB) *GormProfileStore {
	return &GormProfileStore{DB: db}
}

func (s *GormProfileStore) EnsureState(userID string) (*models.UserDailyState, error) {
	var state models.UserDailyState
	err := s.DB.Where("external_user_id = ?", userID).First(&state).Error
	if err == gorm.ErrRecordNotFound {
		state = models.UserDailyState{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			Level:          1,
			UserTier:       string(models.TierBronze),
		}
		if err := s.DB.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *GormProfileStore) SaveOutcome(state *models.UserDailyState, record *models.ClaimRecord) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(state).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
}

func (s *GormProfileStore) RecentClaims(userID string, limit int) ([]models.ClaimRecord, error) {
	var records []models.ClaimRecord
	err := s.DB.Where("external_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (s *GormProfileStore) PruneClaims(before time.Time) (int64, error) {
	result := s.DB.Where("created_at < ?", before).Delete(&models.ClaimRecord{})
	return result.RowsAffected, result.Error
}

// --- In-memory store (tests, local runs without Postgres) ---

type MemoryProfileStore struct {
	mu      sync.Mutex
	states  map[string]*models.UserDailyState
	records []models.ClaimRecord
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{states: make(map[string]*models.UserDailyState)}
}

func (s *MemoryProfileStore) EnsureState(userID string) (*models.UserDailyState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[userID]; ok {
		copied := *state
		return &copied, nil
	}
	state := models.UserDailyState{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Level:          1,
		UserTier:       string(models.TierBronze),
	}
	s.states[userID] = &state
	copied := state
	return &copied, nil
}

func (s *MemoryProfileStore) SaveOutcome(state *models.UserDailyState, record *models.ClaimRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *state
	s.states[state.ExternalUserID] = &copied
	s.records = append(s.records, *record)
	return nil
}

func (s *MemoryProfileStore) RecentClaims(userID string, limit int) ([]models.ClaimRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ClaimRecord
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if s.records[i].ExternalUserID == userID {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *MemoryProfileStore) PruneClaims(before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var pruned int64
	for _, r := range s.records {
		if r.CreatedAt.Before(before) {
			pruned++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return pruned, nil
}
