// Package main hosts the watchlog CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into watch-log Manager
// calls: listing tracked series, episodes and watch logs, syncing series from
// TVMaze, recording start and finish dates, and scaffolding configuration.
// Running the binary without a subcommand on a terminal opens the numbered
// interactive menu.
//
// Commands never touch the database or TVMaze directly; they open a session
// (config, logger, store, catalog client, Manager) through commandContext and
// render what the Manager returns.
package main
