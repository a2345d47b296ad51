package ftp

import "sync/atomic"

// ServerStats is a snapshot of server activity.
//
// For Prometheus integration, expose these as:
//   - Counters: ConnsAccepted, ConnsRejected, ConnsRefused, Commands, DecodeErrors, LinesTooLong
//   - Gauges: ActiveSessions, PooledSessions, Peers
type ServerStats struct {
	ConnsAccepted uint64 // Connections returned by Accept
	ConnsRejected uint64 // Connections turned away because no session was free
	ConnsRefused  uint64 // Connections turned away by an open peer breaker
	Commands      uint64 // Commands decoded successfully
	DecodeErrors  uint64 // Malformed lines, LinesTooLong included
	LinesTooLong  uint64 // Sessions closed for exceeding the line limit

	ActiveSessions int32 // Sessions serving a connection
	PooledSessions int32 // Sessions allocated, active and idle
	Peers          int32 // Peer hosts tracked by the breaker registry
}

type serverStatsCollector struct {
	stats ServerStats
}

func (c *serverStatsCollector) recordAccepted() {
	atomic.AddUint64(&c.stats.ConnsAccepted, 1)
}

func (c *serverStatsCollector) recordRejected() {
	atomic.AddUint64(&c.stats.ConnsRejected, 1)
}

func (c *serverStatsCollector) recordRefused() {
	atomic.AddUint64(&c.stats.ConnsRefused, 1)
}

func (c *serverStatsCollector) recordCommand() {
	atomic.AddUint64(&c.stats.Commands, 1)
}

func (c *serverStatsCollector) recordDecodeError(lineTooLong bool) {
	atomic.AddUint64(&c.stats.DecodeErrors, 1)
	if lineTooLong {
		atomic.AddUint64(&c.stats.LinesTooLong, 1)
	}
}

func (c *serverStatsCollector) snapshot() ServerStats {
	return ServerStats{
		ConnsAccepted: atomic.LoadUint64(&c.stats.ConnsAccepted),
		ConnsRejected: atomic.LoadUint64(&c.stats.ConnsRejected),
		ConnsRefused:  atomic.LoadUint64(&c.stats.ConnsRefused),
		Commands:      atomic.LoadUint64(&c.stats.Commands),
		DecodeErrors:  atomic.LoadUint64(&c.stats.DecodeErrors),
		LinesTooLong:  atomic.LoadUint64(&c.stats.LinesTooLong),
	}
}
