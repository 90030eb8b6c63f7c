// Package cli is responsible for parsing command-line arguments, reading
// configuration files and environment variables, and handling process-level
// concerns like exit codes. It translates them into the application's
// internal configuration and renders the app's reports.
package cli
