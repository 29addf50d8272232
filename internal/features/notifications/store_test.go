package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu    sync.Mutex
	items []Notification
}

func (m *memStore) CreateMany(ctx context.Context, notifications []Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range notifications {
		n.ID = primitive.NewObjectID()
		n.CreatedAt = time.Now().Add(time.Duration(len(m.items)) * time.Millisecond)
		m.items = append(m.items, n)
	}
	return nil
}

func (m *memStore) List(ctx context.Context, recipientID primitive.ObjectID, query ListQuery) ([]Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []Notification
	for _, n := range m.items {
		if n.RecipientID != recipientID || (query.UnreadOnly && n.Read) || (query.Type != "" && n.Type != query.Type) {
			continue
		}
		matched = append(matched, n)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start := (query.Page - 1) * query.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := min(start+query.Limit, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (m *memStore) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		if item.RecipientID == recipientID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (m *memStore) MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) (*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].RecipientID == recipientID {
			m.items[i].Read = true
			n := m.items[i]
			return &n, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *memStore) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].RecipientID == recipientID && !m.items[i].Read {
			m.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	var n int64
	for _, item := range m.items {
		if item.IssueID == issueID {
			n++
			continue
		}
		kept = append(kept, item)
	}
	m.items = kept
	return n, nil
}

func (m *memStore) all() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.items...)
}

type memActors []auth.User

func (a memActors) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]auth.User, error) {
	var out []auth.User
	for _, u := range a {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}
