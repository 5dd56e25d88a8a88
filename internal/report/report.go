package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mx51/sonar-results-action/internal/sonar"
)

// Marker identifies comments authored by this tool. It renders invisibly
// in GitHub's markdown display but is locatable in the raw comment body.
const Marker = "<!-- sonar-results-action -->"

const notAvailable = "not available"

const hashNotFound = "(not found)"

var resultHashPattern = regexp.MustCompile(`<!-- sonar_results: .* -->`)

// Context carries the non-metric inputs needed to render a report.
// QualityGate is nil when the quality gate was not checked.
type Context struct {
	HostURL     string
	ProjectKey  string
	PRNumber    int
	QualityGate *bool
}

// Render produces the comment body for a snapshot. Output is
// deterministic: the same snapshot and context always produce
// byte-identical text.
func Render(snapshot sonar.Snapshot, rc Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**[SonarQube Scan Results](%s)**\n\n", projectLink(rc, "dashboard"))

	if rc.QualityGate != nil {
		if *rc.QualityGate {
			b.WriteString("Quality Gate: **PASSED** :white_check_mark:\n\n")
		} else {
			b.WriteString("Quality Gate: **FAILED** :x:\n\n")
		}
	}

	b.WriteString("| Metric | This PR |\n")
	b.WriteString("|--------|---------|\n")
	for _, r := range snapshot.Results {
		value := notAvailable
		if r.Available {
			value = formatValue(r.Key, r.Value)
		}
		metricURL := projectLink(rc, "component_measures") + "&metric=" + r.Key
		fmt.Fprintf(&b, "| [%s](%s) | %s |\n", r.Key, metricURL, value)
	}

	b.WriteString("\n")
	b.WriteString(Marker)
	b.WriteString("\n")
	b.WriteString(ResultHash(snapshot))

	return b.String()
}

// ResultHash encodes the snapshot's key/value pairs as a hidden token so a
// later run can tell whether the published results changed without parsing
// the rendered table.
func ResultHash(snapshot sonar.Snapshot) string {
	pairs := make([]string, 0, len(snapshot.Results))
	for _, r := range snapshot.Results {
		value := r.Value
		if !r.Available {
			value = notAvailable
		}
		pairs = append(pairs, r.Key+","+value)
	}
	return fmt.Sprintf("<!-- sonar_results: %q -->", strings.Join(pairs, "|"))
}

// ExtractResultHash pulls the hidden result token out of a comment body,
// returning a fixed placeholder when the body has none.
func ExtractResultHash(body string) string {
	if m := resultHashPattern.FindString(body); m != "" {
		return m
	}
	return hashNotFound
}

// SameResults reports whether two comment bodies embed identical result
// tokens. Bodies without a token never compare equal.
func SameResults(a, b string) bool {
	ha := ExtractResultHash(a)
	return ha != hashNotFound && ha == ExtractResultHash(b)
}

// projectLink builds a link to a SonarQube page scoped to the project and
// pull request.
func projectLink(rc Context, page string) string {
	return fmt.Sprintf("%s/%s?id=%s&pullRequest=%d", strings.TrimSuffix(rc.HostURL, "/"), page, rc.ProjectKey, rc.PRNumber)
}

// formatValue renders coverage-style metrics to one decimal place with a
// percent sign; everything else passes through untouched.
func formatValue(key, value string) string {
	if strings.Contains(key, "coverage") {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return fmt.Sprintf("%.1f%%", f)
		}
	}
	return value
}
