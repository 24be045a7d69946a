// Package state holds the generator counter and the history of launcher
// scripts written by script-gen.
//
// Two stores are provided. Memory keeps everything in process and starts the
// counter at zero on every start. SQLite persists the counter and history in a
// local database file so that restarting the CLI never reuses a seed.
package state
