package app_test

import (
	"context"
	"testing"

	"enrollment-assessment/internal/app"
	"enrollment-assessment/internal/domain"
	"enrollment-assessment/internal/infra/memory"
)

func TestOpenRestoresPersistedState(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	persistence := app.NewPersistence(kv)
	lead := domain.LeadInfo{FirstName: "Ada", Email: "ada@example.com"}
	if err := persistence.Save(ctx, "v1", domain.AnswerSet{0: 3, 1: 3}, lead); err != nil {
		t.Fatalf("seed: %v", err)
	}
	service := newTestService(kv)

	session, _, cancel, err := service.Open(ctx, "v1", "/results?first_name=Ada")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer cancel()
	snap := session.Snapshot()
	if snap.Step != domain.StepResults {
		t.Fatalf("expected results step, got %s", snap.Step)
	}
	if snap.Lead != lead {
		t.Fatalf("expected restored lead, got %+v", snap.Lead)
	}
	if snap.Results == nil || snap.Results.CategoryPercentages[domain.CategoryClarify] != 100 {
		t.Fatalf("expected Clarify at 100%%, got %+v", snap.Results)
	}
}

func TestOpenResultsWithoutAnswersRedirects(t *testing.T) {
	service := newTestService(memory.NewKVStore())

	_, updates, cancel, err := service.Open(context.Background(), "v1", "/results")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer cancel()
	snap := <-updates
	if snap.Step != domain.StepWelcome {
		t.Fatalf("expected welcome step, got %s", snap.Step)
	}
	if snap.Address != "/" || !snap.ReplaceAddress {
		t.Fatalf("expected address replaced with /, got %q replace=%v", snap.Address, snap.ReplaceAddress)
	}
}

func TestOpenResultsMidQuizKeepsQuiz(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	service := newTestService(kv)

	first, _, cancelFirst, err := service.Open(ctx, "v1", "/")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer cancelFirst()
	if _, err := first.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := first.SelectAnswer(0); err != nil {
		t.Fatalf("answer failed: %v", err)
	}

	second, updates, cancelSecond, err := service.Open(ctx, "v1", "/results")
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer cancelSecond()
	if second != first {
		t.Fatalf("expected the running session to be shared")
	}
	snap := <-updates
	if snap.Step != domain.StepQuiz || snap.Results != nil {
		t.Fatalf("expected quiz step without results, got %s", snap.Step)
	}
	if snap.Address != "/" || !snap.ReplaceAddress {
		t.Fatalf("expected the second tab sent back to /, got %q replace=%v", snap.Address, snap.ReplaceAddress)
	}
	if _, err := kv.Get(ctx, "visitor:v1:answers"); err != domain.ErrKeyNotFound {
		t.Fatalf("expected nothing persisted, got %v", err)
	}
}

func TestOpenReusesSession(t *testing.T) {
	ctx := context.Background()
	service := newTestService(memory.NewKVStore())

	first, _, cancelFirst, err := service.Open(ctx, "v1", "/")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer cancelFirst()
	if _, err := first.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	second, _, cancelSecond, err := service.Open(ctx, "v1", "/")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer cancelSecond()
	if second != first || second.Snapshot().Step != domain.StepQuiz {
		t.Fatalf("expected the running session to be shared")
	}
}

func TestOpenReceivesUpdatesUntilLeave(t *testing.T) {
	ctx := context.Background()
	service := newTestService(memory.NewKVStore())

	session, ch, cancel, err := service.Open(ctx, "v1", "/")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	<-ch // initial snapshot

	if _, err := session.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	update := <-ch
	if update.Step != domain.StepQuiz {
		t.Fatalf("expected quiz step, got %s", update.Step)
	}

	cancel()
	service.Leave(ctx, "v1")
	fresh, _, cancelFresh, err := service.Open(ctx, "v1", "/")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer cancelFresh()
	if fresh == session || fresh.Snapshot().Step != domain.StepWelcome {
		t.Fatalf("expected session dropped after leave")
	}
}

// leavingStore drops the visitor's session right before the first Attach,
// the way another tab's Leave can between lookup and subscription.
type leavingStore struct {
	*memory.SessionStore
	dropped bool
}

func (s *leavingStore) Attach(visitorID string, session *app.Session) (<-chan domain.FlowSnapshot, func(), bool) {
	if !s.dropped {
		s.dropped = true
		s.SessionStore.DeleteIfEmpty(visitorID)
	}
	return s.SessionStore.Attach(visitorID, session)
}

func TestOpenRetriesWhenSessionDroppedBeforeAttach(t *testing.T) {
	store := &leavingStore{SessionStore: memory.NewSessionStore()}
	service := app.NewAssessmentService(store, app.SessionConfig{Catalog: domain.CanonicalCatalog()})

	session, updates, cancel, err := service.Open(context.Background(), "v1", "/")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer cancel()
	if !store.dropped {
		t.Fatalf("expected the session to be dropped once")
	}
	stored, ok := store.Get("v1")
	if !ok || stored != session {
		t.Fatalf("expected the attached session to be the stored one")
	}
	if snap := <-updates; snap.VisitorID != "v1" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	store.DeleteIfEmpty("v1")
	if _, ok := store.Get("v1"); !ok {
		t.Fatalf("expected the subscribed session to survive DeleteIfEmpty")
	}
}

func TestScoreIsStateless(t *testing.T) {
	service := newTestService(memory.NewKVStore())

	results, recs := service.Score(domain.AnswerSet{})
	if results.OverallPercentage != 0 || results.Level != domain.LevelFoundation {
		t.Fatalf("expected empty results, got %+v", results)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 recommendations, got %d", len(recs))
	}
}

func newTestService(kv app.KeyValueStore) *app.AssessmentService {
	return app.NewAssessmentService(memory.NewSessionStore(), app.SessionConfig{
		Catalog:     domain.CanonicalCatalog(),
		Persistence: app.NewPersistence(kv),
	})
}
