package github

import (
	"context"
	"strings"

	"github.com/google/go-github/v39/github"

	"github.com/mx51/sonar-results-action/internal/report"
)

// Outcome describes what Publish did to the pull request
type Outcome int

const (
	// OutcomeCreated means a new marked comment was created
	OutcomeCreated Outcome = iota
	// OutcomeUpdated means the existing marked comment was edited in place
	OutcomeUpdated
	// OutcomeUnchanged means the existing marked comment already carried
	// these results and was left alone
	OutcomeUnchanged
)

// Publisher maintains the tool's single marked comment on a pull request
type Publisher struct {
	client CommentClient
}

// NewPublisher creates a publisher backed by the given comment client
func NewPublisher(client CommentClient) *Publisher {
	return &Publisher{client: client}
}

// FindMarked returns the first comment in list order whose body contains
// the marker, or nil when none exists. Any later marked comments are
// ignored: updating only the first bounds the damage from concurrent runs
// without destroying anything.
func FindMarked(comments []*github.IssueComment) *github.IssueComment {
	for _, c := range comments {
		if strings.Contains(c.GetBody(), report.Marker) {
			return c
		}
	}
	return nil
}

// Publish lists the pull request's comments, locates a previously
// published marked comment, and either edits it in place or creates a new
// one. At most one comment is created or mutated per call. The returned id
// identifies the comment that carries the results after the call.
func (p *Publisher) Publish(ctx context.Context, owner, repo string, prNumber int, body string) (int64, Outcome, error) {
	comments, err := p.client.ListComments(ctx, owner, repo, prNumber)
	if err != nil {
		return 0, OutcomeUnchanged, err
	}

	existing := FindMarked(comments)
	if existing == nil {
		created, err := p.client.CreateComment(ctx, owner, repo, prNumber, body)
		if err != nil {
			return 0, OutcomeUnchanged, err
		}
		return created.GetID(), OutcomeCreated, nil
	}

	if report.SameResults(existing.GetBody(), body) {
		return existing.GetID(), OutcomeUnchanged, nil
	}

	updated, err := p.client.EditComment(ctx, owner, repo, existing.GetID(), body)
	if err != nil {
		return 0, OutcomeUnchanged, err
	}

	return updated.GetID(), OutcomeUpdated, nil
}
