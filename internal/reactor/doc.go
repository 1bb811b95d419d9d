// Package reactor implements the reactive dataflow layer on top of a
// ledger: a Reactor subscribes to one ledger run, matches incoming events
// against a Pattern, and runs a Handler over each match, republishing the
// Handler's outputs to the same run. Chaining several Reactors against
// ledger.Publish/Subscribe this way forms an arbitrary dataflow DAG.
package reactor
