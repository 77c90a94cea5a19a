// Package output provides output formatting for the Keyline CLI.
//
// All command output flows through here:
//
//   - formatter.go: Formatter interface and factory
//   - table.go: Table rendering with wide mode support
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//   - progress.go: Progress bar for the bench command
//   - spinner.go: Progress animation for slow operations
//
// Formatters accept arbitrary values; the table formatter renders
// structs, slices and maps via reflection, honoring `table:"wide"`
// and `table:"-"` field tags.
package output
