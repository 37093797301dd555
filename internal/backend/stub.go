package backend

import (
	"github.com/kitsune-hash/runqy-benchmarks/pkg/runqy"
)

// openStub targets the loopback stub queue server (cmd/qbench-stub). The stub
// speaks the Runqy wire protocol, so the shim is the Runqy one under a
// different system name.
func openStub() *Runqy {
	url := envOr("STUB_URL", "http://localhost:8712")
	queue := envOr("STUB_QUEUE", "benchmark")
	return NewRunqy("stub", runqy.New(url, runqy.WithTimeout(submitTimeout)), queue)
}
