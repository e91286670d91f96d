// Package logtail reads the tail of extman's JSON-lines log file.
//
// The TUI cannot print to the terminal it is drawing on, so it logs to a file
// (log_file in the config). Tail returns the most recent entries, optionally
// dropping those below a level, for the "extman logs" command to
// pretty-print.
//
// The file is scanned once with a fixed-size ring buffer, so memory stays
// bounded by the number of lines requested regardless of file size. Lines
// longer than 1 MiB fail the scan.
package logtail
