package sonar

// Measure represents a single metric value from SonarQube's measures API
type Measure struct {
	Metric string  `json:"metric"`
	Value  string  `json:"value"`
	Period *Period `json:"period,omitempty"`
}

// Period holds the pull-request-scoped value of a measure. SonarQube
// reports new-code metrics for a pull request under this field rather
// than the top-level value.
type Period struct {
	Value string `json:"value"`
}

// ResultValue returns the pull-request-scoped value when present,
// otherwise the overall value.
func (m Measure) ResultValue() string {
	if m.Period != nil {
		return m.Period.Value
	}
	return m.Value
}

// ComponentResponse represents the response from SonarQube's measures API
type ComponentResponse struct {
	Component struct {
		Measures []Measure `json:"measures"`
	} `json:"component"`
}

// QualityGateResponse represents the response from SonarQube's quality gate API
type QualityGateResponse struct {
	ProjectStatus struct {
		Status string `json:"status"`
	} `json:"projectStatus"`
}

// Result is the outcome for one configured metric key. Available is false
// when the service returned no data for the key on this project.
type Result struct {
	Key       string
	Value     string
	Available bool
}

// Snapshot holds the results for every configured metric key, in the
// configured order. It is built once per run and never mutated.
type Snapshot struct {
	Results []Result
}
