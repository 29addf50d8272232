package issues

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/features/notifications"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

type memStore struct {
	mu     sync.Mutex
	issues []Issue
	counts *SummaryCounts
}

func (m *memStore) Create(ctx context.Context, issue *Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue.ID = primitive.NewObjectID()
	issue.CreatedAt = time.Now().Add(time.Duration(len(m.issues)) * time.Second)
	issue.UpdatedAt = issue.CreatedAt
	m.issues = append(m.issues, *issue)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id primitive.ObjectID) (*Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, issue := range m.issues {
		if issue.ID == id {
			return &issue, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *memStore) List(ctx context.Context, filter Filter, page, limit int) ([]Issue, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []Issue
	for _, issue := range m.issues {
		if filter.Status != "" && issue.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && issue.Priority != filter.Priority {
			continue
		}
		if filter.AssigneeID != nil && (issue.AssigneeID == nil || *issue.AssigneeID != *filter.AssigneeID) {
			continue
		}
		matched = append(matched, issue)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (m *memStore) Update(ctx context.Context, issue *Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.issues {
		if m.issues[i].ID == issue.ID {
			m.issues[i] = *issue
			return nil
		}
	}
	return pkgerrors.ErrNotFound
}

func (m *memStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.issues {
		if m.issues[i].ID == id {
			m.issues = append(m.issues[:i], m.issues[i+1:]...)
			return nil
		}
	}
	return pkgerrors.ErrNotFound
}

func (m *memStore) Summary(ctx context.Context, assigneePage, assigneeLimit int) (*SummaryCounts, error) {
	if m.counts == nil {
		return &SummaryCounts{}, nil
	}
	return m.counts, nil
}

type memUsers []auth.User

func (u memUsers) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	for i := range u {
		if u[i].ID.Hex() == userID {
			return &u[i], nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (u memUsers) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]auth.User, error) {
	var out []auth.User
	for _, user := range u {
		for _, id := range ids {
			if user.ID == id {
				out = append(out, user)
			}
		}
	}
	return out, nil
}

type event struct {
	kind   string
	issue  primitive.ObjectID
	change notifications.IssueChange
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingNotifier) record(e event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) IssueCreated(ctx context.Context, actor *auth.User, issue notifications.IssueRef, assignee *primitive.ObjectID) error {
	return r.record(event{kind: "created", issue: issue.ID})
}

func (r *recordingNotifier) IssueUpdated(ctx context.Context, actor *auth.User, issue notifications.IssueRef, change notifications.IssueChange) error {
	return r.record(event{kind: "updated", issue: issue.ID, change: change})
}

func (r *recordingNotifier) IssueDeleted(ctx context.Context, issueID primitive.ObjectID) error {
	return r.record(event{kind: "deleted", issue: issueID})
}

func (r *recordingNotifier) Events() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

type recordingPurger struct {
	mu     sync.Mutex
	purged []primitive.ObjectID
}

func (p *recordingPurger) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purged = append(p.purged, issueID)
	return 2, nil
}
