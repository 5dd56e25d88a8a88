package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mx51/sonar-results-action/internal/apierr"
)

const sonarPropertiesFile = "sonar-project.properties"

// DefaultMetricKeys is the metric set reported when SONAR_METRIC_KEYS is unset.
var DefaultMetricKeys = []string{"coverage", "lines", "code_smells", "bugs", "complexity"}

// Config captures all environment-sourced settings once at startup. No
// other package reads the environment directly.
type Config struct {
	GitHubToken      string
	GitHubRepository string
	EventPath        string
	Workspace        string
	SonarToken       string
	SonarHostURL     string
	SonarProjectKey  string
	MetricKeys       []string
	CheckQualityGate bool
}

// Load reads configuration from the environment, honoring a local .env
// file when present.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		GitHubRepository: os.Getenv("GITHUB_REPOSITORY"),
		EventPath:        os.Getenv("GITHUB_EVENT_PATH"),
		Workspace:        os.Getenv("GITHUB_WORKSPACE"),
		SonarToken:       os.Getenv("SONAR_TOKEN"),
		SonarHostURL:     os.Getenv("SONAR_HOST_URL"),
		SonarProjectKey:  os.Getenv("SONAR_PROJECT_KEY"),
		MetricKeys:       getEnvListDefault("SONAR_METRIC_KEYS", DefaultMetricKeys),
		CheckQualityGate: getEnvBoolDefault("SONAR_QUALITY_GATE", true),
	}
}

// Validate checks that every required setting is present before any
// network call is made.
func (c Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"GITHUB_TOKEN", c.GitHubToken},
		{"GITHUB_REPOSITORY", c.GitHubRepository},
		{"GITHUB_EVENT_PATH", c.EventPath},
		{"SONAR_TOKEN", c.SonarToken},
		{"SONAR_HOST_URL", c.SonarHostURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("env var not found: %s: %w", r.name, apierr.ErrConfig)
		}
	}

	owner, repo, ok := strings.Cut(c.GitHubRepository, "/")
	if !ok || owner == "" || repo == "" {
		return fmt.Errorf("invalid GITHUB_REPOSITORY %q, expected owner/repo: %w", c.GitHubRepository, apierr.ErrConfig)
	}

	if len(c.MetricKeys) == 0 {
		return fmt.Errorf("SONAR_METRIC_KEYS must name at least one metric: %w", apierr.ErrConfig)
	}

	if c.SonarProjectKey == "" && c.Workspace == "" {
		return fmt.Errorf("env var not found: GITHUB_WORKSPACE (needed to locate %s): %w", sonarPropertiesFile, apierr.ErrConfig)
	}

	return nil
}

// OwnerRepo splits GITHUB_REPOSITORY into its owner and repo parts.
// Validate must have succeeded first.
func (c Config) OwnerRepo() (string, string) {
	owner, repo, _ := strings.Cut(c.GitHubRepository, "/")
	return owner, repo
}

// ResolveProjectKey returns the configured sonar project key, falling back
// to the sonar-project.properties file in the checked-out workspace.
func (c Config) ResolveProjectKey() (string, error) {
	if c.SonarProjectKey != "" {
		return c.SonarProjectKey, nil
	}
	return ReadProjectKey(filepath.Join(c.Workspace, sonarPropertiesFile))
}

// ReadProjectKey extracts the sonar.projectKey property from a
// sonar-project.properties file.
func ReadProjectKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %v: %w", sonarPropertiesFile, err, apierr.ErrConfig)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(name) == "sonar.projectKey" {
			return strings.TrimSpace(value), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read %s: %v: %w", sonarPropertiesFile, err, apierr.ErrConfig)
	}

	return "", fmt.Errorf("sonar.projectKey not found in %s: %w", path, apierr.ErrConfig)
}

// event mirrors the slice of the GitHub webhook payload we care about.
type event struct {
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
}

// PullRequestNumber reads the GitHub event payload and returns the pull
// request number, or 0 when the triggering event is not a pull request.
func PullRequestNumber(eventPath string) (int, error) {
	data, err := os.ReadFile(eventPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read event payload: %v: %w", err, apierr.ErrConfig)
	}

	var ev event
	if err := json.Unmarshal(data, &ev); err != nil {
		return 0, fmt.Errorf("failed to parse event payload %s: %v: %w", eventPath, err, apierr.ErrConfig)
	}

	return ev.PullRequest.Number, nil
}

func getEnvListDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getEnvBoolDefault(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
