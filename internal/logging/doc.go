// Package logging provides opt-in file-based logging with rotation for QFS.
// When --debug is set, debug-level logs are written to ~/.qfs/logs/server.log
// and echoed to stderr. Commands that open the index also log to that file at
// the configured server log level, without writing to stderr.
package logging
