// qbench-stub serves the loopback stub queue so the harness can be exercised
// end to end without an external broker:
//
//	qbench-stub &
//	qbench run 1000 simple 10 --backend stub
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/kitsune-hash/runqy-benchmarks/internal/stubqueue"
)

func main() {
	addr := flag.String("addr", ":8712", "listen address")
	apiKey := flag.String("api-key", "", "require this bearer token on submissions")
	delay := flag.Duration("delay", 0, "artificial per-submission delay (e.g. 1ms)")
	failEvery := flag.Int("fail-every", 0, "reject every Nth submission (0 disables)")
	flag.Parse()

	srv := stubqueue.New(stubqueue.Options{
		APIKey:    *apiKey,
		Delay:     *delay,
		FailEvery: *failEvery,
	})

	slog.Info("stub queue listening", "addr", *addr, "delay", *delay, "fail_every", *failEvery)
	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := httpSrv.ListenAndServe(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
