/*
Package resilience provides a circuit breaker for flaky dependencies.

# Overview

The tracer spawns one worker process per run. When the worker binary is
missing, unrunnable, or the machine is out of processes, every spawn
fails the same way; the breaker suspends launch attempts instead of
paying the failure cost run after run.

# States

  - Closed: normal operation, requests pass through
  - Open: requests fail immediately with ErrCircuitOpen
  - Half-Open: a bounded number of probes test whether the dependency
    recovered; extra requests fail with ErrTooManyRequests

Transitions:

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[probes succeed]-> Closed
	                                                |
	                                          [probe fails]
	                                                |
	                                                v
	                                              Open

# Usage

	breaker := resilience.New("sandbox-worker", resilience.Settings{
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("breaker state changed", zap.String("to", to.String()))
		},
	})

	result, err := breaker.Execute(func() (interface{}, error) {
		return spawnWorker()
	})

Every state change starts a new generation of counts; outcomes reported
by requests admitted under an older generation are discarded.
*/
package resilience
