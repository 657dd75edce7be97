package types

type TaskOutcome struct {
	InputName    string
	ArtifactPath string
	ReportPath   string
	Succeeded    bool
	Degraded     bool
	FailureKind  FailureKind
	Error        string
	Alerts       []AlertEvent
}

type BatchSummary struct {
	Total     int
	Succeeded int
	Degraded  int
	Failed    int
}
