// Package health runs the ambient L1-RPC-client health check: a
// gocron-scheduled poll per configured parent chain, exported as a
// Prometheus gauge. This is deliberately separate from C7's own
// edge-triggered observation loop (l1observer.go) - one is mainchain
// correctness, this is operator visibility.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var l1Health = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "coinshiftd",
		Subsystem: "l1",
		Name:      "rpc_healthy",
		Help:      "Whether the configured L1 RPC client for a parent chain is currently reachable (1) or not (0).",
	},
	[]string{"parent_chain"},
)

func init() {
	prometheus.MustRegister(l1Health)
}

// Checker periodically calls Healthy on every configured L1RPCClient and
// records the result as a gauge, independent of anything C7 does with the
// same clients.
type Checker struct {
	clients  map[domain.ParentChainType]ports.L1RPCClient
	interval time.Duration
	sched    *gocron.Scheduler

	mu     sync.RWMutex
	status map[domain.ParentChainType]bool
}

func NewChecker(clients map[domain.ParentChainType]ports.L1RPCClient, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Checker{
		clients:  clients,
		interval: interval,
		sched:    gocron.NewScheduler(time.UTC),
		status:   make(map[domain.ParentChainType]bool, len(clients)),
	}
}

func (c *Checker) Start() error {
	if _, err := c.sched.Every(uint64(c.interval.Seconds())).Seconds().Do(c.checkAll); err != nil {
		return err
	}
	c.checkAll()
	c.sched.StartAsync()
	return nil
}

func (c *Checker) Stop() {
	c.sched.Stop()
}

func (c *Checker) checkAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for chain, cl := range c.clients {
		healthy := cl.Healthy(ctx)

		c.mu.Lock()
		c.status[chain] = healthy
		c.mu.Unlock()

		value := 0.0
		if healthy {
			value = 1.0
		}
		l1Health.WithLabelValues(chain.String()).Set(value)

		if !healthy {
			log.WithField("parent_chain", chain.String()).Warn("L1 RPC client unhealthy")
		}
	}
}

// Status returns the most recently observed health per chain, without
// blocking on a fresh RPC round trip.
func (c *Checker) Status() map[domain.ParentChainType]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[domain.ParentChainType]bool, len(c.status))
	for k, v := range c.status {
		out[k] = v
	}
	return out
}
