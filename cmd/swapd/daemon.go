package main

import (
	"context"
)

// daemon owns the process-lifetime context, mirroring the teacher's
// cmd/daemon shape: a single cancellable root context the signal handler
// and every trade goroutine share.
type daemon struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// wait blocks until the daemon's context is cancelled, e.g. by an
// interrupt signal installed in main.
func (d *daemon) wait() {
	<-d.ctx.Done()
}
