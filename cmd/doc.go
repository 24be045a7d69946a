// Package cmd implements the cmtgen command-line interface.
//
// cmtgen drives the CMT data generator on a set of hosts over SSH. Each remote
// task (init, script-gen, gen, wait, collect) is a subcommand that runs on
// every host, either in parallel or one host at a time; the pipeline
// subcommand runs them in dependency order.
//
// Start with task.go for the task table, pipeline.go and dispatch.go for how
// tasks reach hosts, and remote.go for how a single remote command is run and
// recorded. The generator counter that seeds each launcher script lives in
// internal/state.
package cmd
