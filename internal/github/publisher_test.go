package github

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-github/v39/github"

	"github.com/mx51/sonar-results-action/internal/report"
	"github.com/mx51/sonar-results-action/internal/sonar"
)

// mockCommentClient implements CommentClient for testing
type mockCommentClient struct {
	comments  []*github.IssueComment
	listErr   error
	createErr error
	editErr   error

	created    []string
	editedID   int64
	editedBody string
}

func (m *mockCommentClient) ListComments(ctx context.Context, owner, repo string, prNumber int) ([]*github.IssueComment, error) {
	return m.comments, m.listErr
}

func (m *mockCommentClient) CreateComment(ctx context.Context, owner, repo string, prNumber int, body string) (*github.IssueComment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, body)
	return &github.IssueComment{ID: github.Int64(100), Body: github.String(body)}, nil
}

func (m *mockCommentClient) EditComment(ctx context.Context, owner, repo string, commentID int64, body string) (*github.IssueComment, error) {
	if m.editErr != nil {
		return nil, m.editErr
	}
	m.editedID = commentID
	m.editedBody = body
	return &github.IssueComment{ID: github.Int64(commentID), Body: github.String(body)}, nil
}

func renderedBody(key, value string) string {
	snapshot := sonar.Snapshot{Results: []sonar.Result{
		{Key: key, Value: value, Available: true},
	}}
	return report.Render(snapshot, report.Context{
		HostURL:    "https://sonar.example.com",
		ProjectKey: "my-project",
		PRNumber:   7,
	})
}

func comment(id int64, body string) *github.IssueComment {
	return &github.IssueComment{ID: github.Int64(id), Body: github.String(body)}
}

func TestPublish_CreatesWhenNoMarkedComment(t *testing.T) {
	client := &mockCommentClient{
		comments: []*github.IssueComment{
			comment(1, "just a review comment"),
		},
	}
	publisher := NewPublisher(client)

	body := renderedBody("bugs", "4")
	id, outcome, err := publisher.Publish(context.Background(), "owner", "repo", 7, body)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if outcome != OutcomeCreated {
		t.Errorf("Expected OutcomeCreated, got %v", outcome)
	}
	if id != 100 {
		t.Errorf("Expected created comment id 100, got %d", id)
	}
	if len(client.created) != 1 {
		t.Fatalf("Expected exactly one comment created, got %d", len(client.created))
	}
	if client.created[0] != body {
		t.Errorf("Expected created comment to carry the rendered body")
	}
	if client.editedID != 0 {
		t.Errorf("Expected no comment edited, got edit of %d", client.editedID)
	}
}

func TestPublish_UpdatesExistingMarkedComment(t *testing.T) {
	client := &mockCommentClient{
		comments: []*github.IssueComment{
			comment(1, "unrelated comment"),
			comment(2, renderedBody("bugs", "4")),
		},
	}
	publisher := NewPublisher(client)

	newBody := renderedBody("bugs", "9")
	id, outcome, err := publisher.Publish(context.Background(), "owner", "repo", 7, newBody)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if outcome != OutcomeUpdated {
		t.Errorf("Expected OutcomeUpdated, got %v", outcome)
	}
	if id != 2 {
		t.Errorf("Expected update of existing comment id 2, got %d", id)
	}
	if client.editedID != 2 {
		t.Errorf("Expected comment 2 edited, got %d", client.editedID)
	}
	if client.editedBody != newBody {
		t.Errorf("Expected edited comment to carry the new body")
	}
	if len(client.created) != 0 {
		t.Errorf("Expected no new comment created, got %d", len(client.created))
	}
}

func TestPublish_UpdatesOnlyFirstMarkedComment(t *testing.T) {
	secondBody := renderedBody("coverage", "50")
	client := &mockCommentClient{
		comments: []*github.IssueComment{
			comment(5, renderedBody("bugs", "4")),
			comment(6, secondBody),
		},
	}
	publisher := NewPublisher(client)

	id, outcome, err := publisher.Publish(context.Background(), "owner", "repo", 7, renderedBody("bugs", "9"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if outcome != OutcomeUpdated {
		t.Errorf("Expected OutcomeUpdated, got %v", outcome)
	}
	if id != 5 {
		t.Errorf("Expected first marked comment (id 5) updated, got %d", id)
	}
	if client.editedID != 5 {
		t.Errorf("Expected edit of comment 5, got %d", client.editedID)
	}
	if got := client.comments[1].GetBody(); got != secondBody {
		t.Errorf("Expected second marked comment left untouched")
	}
}

func TestPublish_SkipsWhenResultsUnchanged(t *testing.T) {
	body := renderedBody("bugs", "4")
	client := &mockCommentClient{
		comments: []*github.IssueComment{
			comment(3, body),
		},
	}
	publisher := NewPublisher(client)

	id, outcome, err := publisher.Publish(context.Background(), "owner", "repo", 7, body)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if outcome != OutcomeUnchanged {
		t.Errorf("Expected OutcomeUnchanged, got %v", outcome)
	}
	if id != 3 {
		t.Errorf("Expected existing comment id 3, got %d", id)
	}
	if len(client.created) != 0 || client.editedID != 0 {
		t.Errorf("Expected no writes when results are unchanged")
	}
}

func TestPublish_PropagatesListError(t *testing.T) {
	listErr := errors.New("boom")
	client := &mockCommentClient{listErr: listErr}
	publisher := NewPublisher(client)

	_, _, err := publisher.Publish(context.Background(), "owner", "repo", 7, renderedBody("bugs", "4"))
	if !errors.Is(err, listErr) {
		t.Errorf("Expected list error to propagate, got %v", err)
	}
	if len(client.created) != 0 || client.editedID != 0 {
		t.Errorf("Expected no writes after a failed list")
	}
}

func TestFindMarked(t *testing.T) {
	if got := FindMarked(nil); got != nil {
		t.Errorf("Expected nil for empty list, got %v", got)
	}

	comments := []*github.IssueComment{
		comment(1, "plain"),
		comment(2, "something "+report.Marker),
		comment(3, "another "+report.Marker),
	}
	got := FindMarked(comments)
	if got == nil || got.GetID() != 2 {
		t.Errorf("Expected first marked comment (id 2), got %v", got)
	}
}
