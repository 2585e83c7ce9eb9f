// Package metrics implements C9: the relayer's Prometheus collectors and
// the /healthz liveness surface, served on a single HTTP listener
// (--metrics-addr). The health surface uses alexliesenfeld/health's
// Checker-per-dependency pattern, with one checker per configured chain's
// RPC reachability.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/alexliesenfeld/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors holds every metric the relayer's components report through.
// It satisfies forwarder.Metrics, materializer.Metrics, and
// bootstrap.Metrics without those packages importing prometheus directly.
type Collectors struct {
	messagesForwarded     *prometheus.CounterVec
	forwardErrors         *prometheus.CounterVec
	transactionsMaterialized *prometheus.CounterVec
	materializeFailures   *prometheus.CounterVec
	bootstrapWrites       *prometheus.CounterVec
	rpcErrors             *prometheus.CounterVec
}

// NewCollectors registers every collector against reg and returns the
// handle components hold onto to report through.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		messagesForwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interop_messages_forwarded_total",
			Help: "Interop messages successfully forwarded, by destination chain.",
		}, []string{"chain"}),
		forwardErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interop_forward_errors_total",
			Help: "Forwarding attempts that failed, by destination chain.",
		}, []string{"chain"}),
		transactionsMaterialized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interop_transactions_materialized_total",
			Help: "Type-C bundles successfully materialized, by destination chain.",
		}, []string{"destination_chain"}),
		materializeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interop_materialize_failures_total",
			Help: "Materialization attempts that failed, by destination chain and reason.",
		}, []string{"destination_chain", "reason"}),
		bootstrapWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interop_bootstrap_writes_total",
			Help: "Bootstrap reconciliation writes, by kind.",
		}, []string{"kind"}),
		rpcErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interop_rpc_errors_total",
			Help: "RPC errors observed, by chain and operation.",
		}, []string{"chain", "op"}),
	}
	reg.MustRegister(
		c.messagesForwarded,
		c.forwardErrors,
		c.transactionsMaterialized,
		c.materializeFailures,
		c.bootstrapWrites,
		c.rpcErrors,
	)
	return c
}

func (c *Collectors) ObserveForwarded(destinationChain uint64) {
	c.messagesForwarded.WithLabelValues(chainLabel(destinationChain)).Inc()
}

func (c *Collectors) ObserveForwardError(destinationChain uint64) {
	c.forwardErrors.WithLabelValues(chainLabel(destinationChain)).Inc()
}

func (c *Collectors) ObserveMaterialized(destinationChain uint64) {
	c.transactionsMaterialized.WithLabelValues(chainLabel(destinationChain)).Inc()
}

func (c *Collectors) ObserveMaterializeFailure(destinationChain uint64, reason string) {
	c.materializeFailures.WithLabelValues(chainLabel(destinationChain), reason).Inc()
}

func (c *Collectors) ObserveBootstrapWrite(kind string) {
	c.bootstrapWrites.WithLabelValues(kind).Inc()
}

func (c *Collectors) ObserveRPCError(chain uint64, op string) {
	c.rpcErrors.WithLabelValues(chainLabel(chain), op).Inc()
}

func chainLabel(chainID uint64) string {
	return strconv.FormatUint(chainID, 10)
}

// ChainChecker is the narrow surface NewServer needs to probe one chain's
// RPC liveness: the Name used to label the checker, plus the read call
// used as the liveness probe.
type ChainChecker struct {
	Name  string
	Probe func(ctx context.Context) error
}

// NewServer builds the combined /metrics and /healthz HTTP handler.
// Health is reported per configured chain via one
// alexliesenfeld/health.Check per chain, each calling its probe with a
// short timeout; /metrics serves reg in the standard Prometheus text
// format.
func NewServer(reg *prometheus.Registry, checkers []ChainChecker) *http.ServeMux {
	checks := make([]health.Check, 0, len(checkers))
	for _, c := range checkers {
		c := c
		checks = append(checks, health.Check{
			Name:  c.Name,
			Check: c.Probe,
		})
	}
	checker := health.NewChecker(health.WithChecks(checks...))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health.NewHandler(checker))
	return mux
}
