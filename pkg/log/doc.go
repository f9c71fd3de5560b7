// Package log provides the logging abstraction used across fibcalc.
//
// Library code never talks to a concrete logging backend. It accepts a
// [Logger] and emits messages with typed [Field] values:
//
//	logger.Info("checkpoint loaded",
//	    log.String("dir", dir),
//	    log.Uint64("index", p.Index),
//	)
//
// [ZerologAdapter] backs the interface with zerolog and is what the CLI
// wires in. [NoopLogger] discards everything and is the default when no
// logger is configured.
package log
