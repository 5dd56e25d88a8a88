package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mx51/sonar-results-action/internal/config"
	gh "github.com/mx51/sonar-results-action/internal/github"
	"github.com/mx51/sonar-results-action/internal/report"
	"github.com/mx51/sonar-results-action/internal/sonar"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	prNumber, err := config.PullRequestNumber(cfg.EventPath)
	if err != nil {
		log.Fatalf("Error reading event payload: %v", err)
	}
	if prNumber == 0 {
		fmt.Println("Not a pull request event, nothing to do")
		return
	}

	projectKey, err := cfg.ResolveProjectKey()
	if err != nil {
		log.Fatalf("Error resolving sonar project key: %v", err)
	}

	ctx := context.Background()
	sonarClient := sonar.NewClient(cfg.SonarHostURL, cfg.SonarToken)

	fmt.Printf("Fetching sonar measures for %s (PR #%d)...\n", projectKey, prNumber)
	snapshot, err := sonarClient.FetchMeasures(ctx, projectKey, prNumber, cfg.MetricKeys)
	if err != nil {
		log.Fatalf("Error fetching sonar measures: %v", err)
	}

	rc := report.Context{
		HostURL:    cfg.SonarHostURL,
		ProjectKey: projectKey,
		PRNumber:   prNumber,
	}

	var gatePassed bool
	if cfg.CheckQualityGate {
		gatePassed, err = sonarClient.FetchQualityGateStatus(ctx, projectKey, prNumber)
		if err != nil {
			log.Fatalf("Error fetching quality gate status: %v", err)
		}
		rc.QualityGate = &gatePassed
	}

	body := report.Render(snapshot, rc)

	owner, repo := cfg.OwnerRepo()
	publisher := gh.NewPublisher(gh.NewClient(cfg.GitHubToken))

	commentID, outcome, err := publisher.Publish(ctx, owner, repo, prNumber, body)
	if err != nil {
		log.Fatalf("Error publishing scan results comment: %v", err)
	}

	switch outcome {
	case gh.OutcomeCreated:
		fmt.Printf("Created scan results comment %d on PR #%d\n", commentID, prNumber)
	case gh.OutcomeUpdated:
		fmt.Printf("Updated scan results comment %d on PR #%d\n", commentID, prNumber)
	case gh.OutcomeUnchanged:
		fmt.Printf("Scan results comment %d on PR #%d is already up to date\n", commentID, prNumber)
	}

	if cfg.CheckQualityGate {
		if gatePassed {
			fmt.Println("Quality Gate: PASSED")
		} else {
			fmt.Println("Quality Gate: FAILED")
			os.Exit(1)
		}
	}
}
