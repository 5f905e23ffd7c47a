// Package metric holds the Prometheus plumbing shared by the command-line
// tools.
//
// Each invocation gets its own registry. The client library registers its
// request collectors there, and the registry is dumped in the text
// exposition format on exit when requested:
//
//	reg := metric.NewRegistry(buildinfo.Get())
//	client := rmcloud.NewClient(rmcloud.WithMetrics(rmcloud.NewMetrics(reg)))
//	...
//	metric.WriteText(os.Stderr, reg)
package metric
