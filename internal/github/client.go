package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v39/github"
	"golang.org/x/oauth2"

	"github.com/mx51/sonar-results-action/internal/apierr"
)

// CommentClient defines the pull request comment operations needed to
// publish a report
type CommentClient interface {
	ListComments(ctx context.Context, owner, repo string, prNumber int) ([]*github.IssueComment, error)
	CreateComment(ctx context.Context, owner, repo string, prNumber int, body string) (*github.IssueComment, error)
	EditComment(ctx context.Context, owner, repo string, commentID int64, body string) (*github.IssueComment, error)
}

// Client wraps go-github for pull request comment operations
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub client authenticated with the given token
func NewClient(token string) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

// ListComments fetches every comment on the pull request, traversing all
// pages so an existing marked comment is never missed.
func (c *Client) ListComments(ctx context.Context, owner, repo string, prNumber int) ([]*github.IssueComment, error) {
	var allComments []*github.IssueComment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments on PR #%d: %w", prNumber, classify(err))
		}

		allComments = append(allComments, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// CreateComment creates a new comment on the pull request
func (c *Client) CreateComment(ctx context.Context, owner, repo string, prNumber int, body string) (*github.IssueComment, error) {
	comment, _, err := c.client.Issues.CreateComment(ctx, owner, repo, prNumber, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment on PR #%d: %w", prNumber, classify(err))
	}

	return comment, nil
}

// EditComment replaces the body of an existing comment
func (c *Client) EditComment(ctx context.Context, owner, repo string, commentID int64, body string) (*github.IssueComment, error) {
	comment, _, err := c.client.Issues.EditComment(ctx, owner, repo, commentID, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit comment %d: %w", commentID, classify(err))
	}

	return comment, nil
}

// classify maps a go-github error to the run's error taxonomy.
func classify(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return apierr.FromStatus(ghErr.Response.StatusCode)
	}
	return fmt.Errorf("%v: %w", err, apierr.ErrService)
}
