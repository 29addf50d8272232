package notifications

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/features/mentions"
	"github.com/syedhisham/bxtrack/internal/pkg/markup"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// IssueRef identifies the issue a notification points at.
type IssueRef struct {
	ID    primitive.ObjectID
	Title string
}

func (i IssueRef) link() string {
	return "/issues/" + i.ID.Hex()
}

// IssueChange describes an issue update. Assignee fields are nil when the
// issue is unassigned.
type IssueChange struct {
	CreatedBy   primitive.ObjectID
	OldAssignee *primitive.ObjectID
	NewAssignee *primitive.ObjectID
	OldStatus   string
	NewStatus   string
	OldPriority string
	NewPriority string
	// Edited is set when the title or description changed.
	Edited bool
}

// Preview turns comment text into a plain-text description: mentions are
// rendered to their display names, emphasis markers dropped, and the result
// cut to PreviewLength characters.
func Preview(content string) string {
	return markup.Truncate(markup.PlainText(string(mentions.Render(content))), PreviewLength)
}

// batch collects notifications for one event, at most one per recipient
// and type, never addressed to the actor.
type batch struct {
	actor primitive.ObjectID
	issue IssueRef
	seen  map[string]bool
	items []Notification
}

func newBatch(actor primitive.ObjectID, issue IssueRef) *batch {
	return &batch{actor: actor, issue: issue, seen: make(map[string]bool)}
}

func (b *batch) add(recipient primitive.ObjectID, typ, title, description string) {
	if recipient.IsZero() || recipient == b.actor {
		return
	}
	key := recipient.Hex() + "/" + typ
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.items = append(b.items, Notification{
		RecipientID: recipient,
		ActorID:     b.actor,
		IssueID:     b.issue.ID,
		Type:        typ,
		Title:       title,
		Description: description,
		Link:        b.issue.link(),
	})
}

func (s *Service) flush(ctx context.Context, b *batch) error {
	if len(b.items) == 0 {
		return nil
	}
	return s.store.CreateMany(ctx, b.items)
}

// IssueCreated tells the assignee of a new issue about it.
func (s *Service) IssueCreated(ctx context.Context, actor *auth.User, issue IssueRef, assignee *primitive.ObjectID) error {
	if assignee == nil {
		return nil
	}
	b := newBatch(actor.ID, issue)
	b.add(*assignee, TypeIssueCreated, fmt.Sprintf("%s assigned you a new issue", actor.Name), issue.Title)
	return s.flush(ctx, b)
}

// IssueUpdated notifies a new assignee, then the creator and current
// assignee about status and priority changes. Other edits produce a single
// issue_updated notification.
func (s *Service) IssueUpdated(ctx context.Context, actor *auth.User, issue IssueRef, change IssueChange) error {
	b := newBatch(actor.ID, issue)

	if change.NewAssignee != nil && !sameID(change.OldAssignee, change.NewAssignee) {
		b.add(*change.NewAssignee, TypeIssueAssigned, fmt.Sprintf("%s assigned you an issue", actor.Name), issue.Title)
	}

	watchers := []primitive.ObjectID{change.CreatedBy}
	if change.NewAssignee != nil {
		watchers = append(watchers, *change.NewAssignee)
	}

	statusChanged := change.OldStatus != change.NewStatus
	priorityChanged := change.OldPriority != change.NewPriority
	for _, w := range watchers {
		if statusChanged {
			b.add(w, TypeStatusChanged, "Status changed to "+change.NewStatus, issue.Title)
		}
		if priorityChanged {
			b.add(w, TypePriorityChanged, "Priority changed to "+change.NewPriority, issue.Title)
		}
		if change.Edited && !statusChanged && !priorityChanged {
			b.add(w, TypeIssueUpdated, fmt.Sprintf("%s updated an issue", actor.Name), issue.Title)
		}
	}
	return s.flush(ctx, b)
}

// CommentAdded notifies mentioned users, then the issue's watchers who were
// not mentioned.
func (s *Service) CommentAdded(ctx context.Context, actor *auth.User, issue IssueRef, watchers []primitive.ObjectID, content string, mentioned []primitive.ObjectID) error {
	b := newBatch(actor.ID, issue)
	preview := Preview(content)

	notified := make(map[primitive.ObjectID]bool, len(mentioned))
	for _, id := range mentioned {
		notified[id] = true
		b.add(id, TypeMentioned, fmt.Sprintf("%s mentioned you on %s", actor.Name, issue.Title), preview)
	}
	for _, id := range watchers {
		if notified[id] {
			continue
		}
		b.add(id, TypeCommentAdded, fmt.Sprintf("%s commented on %s", actor.Name, issue.Title), preview)
	}
	return s.flush(ctx, b)
}

// CommentEdited notifies only users mentioned by the edit who were not
// mentioned before.
func (s *Service) CommentEdited(ctx context.Context, actor *auth.User, issue IssueRef, content string, oldMentions, newMentions []primitive.ObjectID) error {
	before := mentions.NewMentionSet()
	for _, id := range oldMentions {
		before.Add(id.Hex())
	}

	b := newBatch(actor.ID, issue)
	preview := Preview(content)
	for _, id := range newMentions {
		if before.Contains(id.Hex()) {
			continue
		}
		b.add(id, TypeMentioned, fmt.Sprintf("%s mentioned you on %s", actor.Name, issue.Title), preview)
	}
	return s.flush(ctx, b)
}

// IssueDeleted drops the notifications of a deleted issue.
func (s *Service) IssueDeleted(ctx context.Context, issueID primitive.ObjectID) error {
	_, err := s.store.DeleteByIssue(ctx, issueID)
	return err
}

func sameID(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
