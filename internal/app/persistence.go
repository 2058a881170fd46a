package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"enrollment-assessment/internal/domain"
)

// Storage keys, namespaced per visitor.
const (
	answersKey = "answers"
	leadKey    = "lead"
)

// KeyValueStore is the storage backend for visitor state (in-memory, Redis, SQL).
// Get returns domain.ErrKeyNotFound for missing keys. SetMany writes all
// entries or none of them.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, entries map[string][]byte) error
}

// Persistence reads and writes a visitor's answers and lead as JSON.
// Reads never fail: missing or malformed data yields the defaults.
type Persistence struct {
	store KeyValueStore
}

func NewPersistence(store KeyValueStore) *Persistence {
	return &Persistence{store: store}
}

// LoadAnswers returns the stored answers or an empty set.
func (p *Persistence) LoadAnswers(ctx context.Context, visitorID string) domain.AnswerSet {
	var answers domain.AnswerSet
	if !p.load(ctx, visitorKey(visitorID, answersKey), &answers) || answers == nil {
		return domain.AnswerSet{}
	}
	return answers
}

// LoadLead returns the stored lead or an empty one.
func (p *Persistence) LoadLead(ctx context.Context, visitorID string) domain.LeadInfo {
	var lead domain.LeadInfo
	if !p.load(ctx, visitorKey(visitorID, leadKey), &lead) {
		return domain.LeadInfo{}
	}
	return lead
}

// Save writes answers and lead together, so a failed save never leaves answers
// that would unlock the results without the matching lead.
func (p *Persistence) Save(ctx context.Context, visitorID string, answers domain.AnswerSet, lead domain.LeadInfo) error {
	rawAnswers, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	rawLead, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}
	err = p.store.SetMany(ctx, map[string][]byte{
		visitorKey(visitorID, answersKey): rawAnswers,
		visitorKey(visitorID, leadKey):    rawLead,
	})
	if err != nil {
		return fmt.Errorf("save visitor state: %w", err)
	}
	return nil
}

func (p *Persistence) load(ctx context.Context, key string, dst any) bool {
	raw, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			log.Printf("load %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("discarding malformed %s: %v", key, err)
		return false
	}
	return true
}

func visitorKey(visitorID, name string) string {
	return "visitor:" + visitorID + ":" + name
}
