package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-tailor/resume/model"
	"resume-tailor/resume/sections"
)

func TestMemoryRepoCopiesInAndOut(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	sess := Session{
		ID:         testSessionID,
		Sections:   sections.Map{sections.ProfessionalSummary: "Analyst"},
		ResumeData: &model.GeneratedResumeData{Skills: model.TailoredSkills{Technical: "SQL"}},
	}
	if err := repo.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	sess.Sections[sections.ProfessionalSummary] = "changed"
	sess.ResumeData.Skills.Technical = "changed"

	got, err := repo.Get(ctx, testSessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Sections[sections.ProfessionalSummary] != "Analyst" || got.ResumeData.Skills.Technical != "SQL" {
		t.Fatalf("stored session aliased caller maps: %+v", got)
	}

	if err := repo.Create(ctx, sess); err == nil {
		t.Fatalf("expected duplicate create to fail")
	}
}

func TestMemoryRepoNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if err := repo.Save(ctx, Session{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Save: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryRepo().Create(ctx, Session{ID: testSessionID}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// fakeRedis keeps values in a map and ignores expiry.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) SetXX(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	repo := NewRedisRepo(client, time.Hour)

	sess := Session{ID: testSessionID, JobDescription: "Analyze data", ProviderIndex: 2}
	if err := repo.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := client.data["tailor:session:"+testSessionID]; !ok {
		t.Fatalf("expected prefixed key, got %v", client.data)
	}
	if client.ttls["tailor:session:"+testSessionID] != time.Hour {
		t.Fatalf("expected ttl to be applied")
	}
	if err := repo.Create(ctx, sess); err == nil {
		t.Fatalf("expected duplicate create to fail")
	}

	sess.JobTitle = "Data Analyst"
	if err := repo.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Get(ctx, testSessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.JobTitle != "Data Analyst" || got.ProviderIndex != 2 {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := repo.Delete(ctx, testSessionID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, testSessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Save(ctx, sess); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected Save on expired key to be ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, testSessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second Delete to be ErrNotFound, got %v", err)
	}
}

func TestNewRedisRepoDefaultsTTL(t *testing.T) {
	repo := NewRedisRepo(newFakeRedis(), 0)
	if repo.ttl != 24*time.Hour {
		t.Fatalf("expected 24h default ttl, got %s", repo.ttl)
	}
}
