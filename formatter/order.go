package formatter

// OrderIssueFormatter renders order violations. The suggestion names the
// fragment to move rather than replacement code.
type OrderIssueFormatter struct{}

func (f *OrderIssueFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .IndentWidth -}}
{{if .Suggestion}}{{help .Suggestion .Padding}}{{end -}}
{{if .Note}}{{note .Note}}{{end}}
`
}
