package session

import (
	"context"
	"errors"
	"fmt"

	"uilocator/pkg/localize"
	"uilocator/pkg/notify"
	"uilocator/pkg/types"
)

// HealthProber is the advisory liveness check run once at startup.
type HealthProber interface {
	Health(ctx context.Context) (*localize.HealthStatus, error)
}

// Probe runs the one-shot backend liveness check and reports the outcome as a
// notification. It never blocks or gates later dispatches and its result is
// not consulted anywhere else.
func Probe(ctx context.Context, p HealthProber, q *notify.Queue) {
	_, err := p.Health(ctx)
	if err == nil {
		q.Enqueue("Backend connected", notify.Success)
		return
	}

	var te *types.TransportError
	if errors.As(err, &te) && te.StatusCode != 0 {
		q.Enqueue(fmt.Sprintf("Backend responded with HTTP %d", te.StatusCode), notify.Warning)
		return
	}
	q.Enqueue("Backend not reachable. Start it and check BACKEND_API_URL.", notify.Error)
}
