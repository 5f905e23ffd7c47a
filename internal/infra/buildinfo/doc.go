// Package buildinfo reports the version of the rmcloud-cli binary.
//
// Release builds inject values with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/rmcloud-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Without ldflags the module version recorded by "go install" is used,
// and the Go version always comes from the runtime.
package buildinfo
