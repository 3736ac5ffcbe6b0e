// Package logging configures structured logging for rlzap.
//
// By default logs go to stderr at info level. With --debug, or when a log
// file is configured, JSON logs are also written to a size-rotated file under
// ~/.rlzap/logs/.
package logging
