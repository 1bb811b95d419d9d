// Package pipeline supervises one ledger and a set of reactors running
// against it, each in its own goroutine, alongside a watchdog that shuts
// the whole pipeline down once no reactor has observed activity for the
// configured idle timeout.
package pipeline
