package types

type DumpMode string

const (
	DumpModePermissions DumpMode = "permissions"
	DumpModeBadging     DumpMode = "badging"
)

type AlertKind string

const (
	AlertKindPacked  AlertKind = "packed"
	AlertKindMalware AlertKind = "malware"
)

type FailureKind string

const (
	FailureKindNone                   FailureKind = ""
	FailureKindParseNotFound          FailureKind = "parse_not_found"
	FailureKindAcquisition            FailureKind = "acquisition"
	FailureKindToolInvocation         FailureKind = "tool_invocation"
	FailureKindDetection              FailureKind = "detection"
	FailureKindDestinationUnavailable FailureKind = "destination_unavailable"
	FailureKindCanceled               FailureKind = "canceled"
	FailureKindInternal               FailureKind = "internal"
)

type ReportFormat string

const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatYAML ReportFormat = "yaml"
)

type SourceKind string

const (
	SourceKindStore     SourceKind = "store"
	SourceKindDirectory SourceKind = "dir"
	SourceKindBrowser   SourceKind = "browser"
)
