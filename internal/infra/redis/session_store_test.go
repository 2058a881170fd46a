package redis

import (
	"context"
	"testing"
	"time"

	"enrollment-assessment/internal/app"
	"enrollment-assessment/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	_, err = store.GetOrCreate(context.Background(), "visitor-1", func(context.Context) (*app.Session, error) {
		return app.NewSession("visitor-1", app.SessionConfig{Catalog: domain.CanonicalCatalog()}, nil, domain.LeadInfo{}), nil
	})
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !mr.Exists("assessment:session:visitor-1") {
		t.Fatalf("expected redis key to be set")
	}

	store.DeleteIfEmpty("visitor-1")
	if mr.Exists("assessment:session:visitor-1") {
		t.Fatalf("expected redis key to be removed")
	}
}
