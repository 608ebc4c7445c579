package services

import (
	"context"
	"errors"
	"sync"

	"couple-backend/internal/docstore"
	"couple-backend/internal/identity"
	"couple-backend/internal/media"
	"couple-backend/internal/push"
	"couple-backend/internal/repository"
)

var errBoom = errors.New("boom")

// faultyStore wraps a MemoryStore and fails selected calls.
type faultyStore struct {
	*docstore.MemoryStore
	failGet         map[string]bool // collection -> fail
	failDeleteBatch bool
	beforeUpdate    func()
}

func newFaultyStore() *faultyStore {
	return &faultyStore{MemoryStore: docstore.NewMemoryStore(), failGet: map[string]bool{}}
}

func (s *faultyStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if s.failGet[collection] {
		return nil, errBoom
	}
	return s.MemoryStore.Get(ctx, collection, id)
}

func (s *faultyStore) Update(ctx context.Context, collection, id string, version int64, data map[string]any) error {
	if s.beforeUpdate != nil {
		hook := s.beforeUpdate
		s.beforeUpdate = nil
		hook()
	}
	return s.MemoryStore.Update(ctx, collection, id, version, data)
}

func (s *faultyStore) DeleteBatch(ctx context.Context, collection string, ids []string) error {
	if s.failDeleteBatch {
		return errBoom
	}
	return s.MemoryStore.DeleteBatch(ctx, collection, ids)
}

type fakeMedia struct {
	mu        sync.Mutex
	destroyed []string
	result    media.DestroyResult
	err       error
}

func (f *fakeMedia) Destroy(ctx context.Context, publicID string) (media.DestroyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, publicID)
	if f.err != nil {
		return "", f.err
	}
	if f.result == "" {
		return media.ResultOK, nil
	}
	return f.result, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []push.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg push.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// env wires every service over one in-memory store.
type env struct {
	store      *faultyStore
	users      *repository.UserRepository
	couples    *repository.CoupleRepository
	codes      *repository.CoupleCodeRepository
	activities *repository.ActivityRepository
	identities *identity.MemoryRegistry
	media      *fakeMedia
	deleter    *BatchDeleter
	unlinker   *CoupleUnlinker
	accounts   *AccountService
}

const testHost = "res.cloudinary.com"

func newEnv() *env {
	store := newFaultyStore()
	e := &env{
		store:      store,
		users:      repository.NewUserRepository(store),
		couples:    repository.NewCoupleRepository(store),
		codes:      repository.NewCoupleCodeRepository(store),
		activities: repository.NewActivityRepository(store),
		identities: identity.NewMemoryRegistry(),
		media:      &fakeMedia{},
		deleter:    NewBatchDeleter(store),
	}
	e.unlinker = NewCoupleUnlinker(e.couples, e.users, repository.NewChatRepository(store), e.deleter)
	e.accounts = NewAccountService(
		e.users, e.couples, e.codes, e.identities,
		e.unlinker, NewMediaCleaner(e.media, testHost), e.deleter,
	)
	return e
}
