// Package output renders rmcloud-cli results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned tables driven by `table` struct tags
//   - json.go, yaml.go: machine-readable output
//   - progress.go: upload progress on stderr
package output
