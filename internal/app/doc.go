// Package app wires the command line to the services.
// It checks start-up preconditions, builds the platform table, the yt-dlp and HTTP clients
// and the dispatch service, and runs downloads, info mode, the platform listing and cookie export.
package app
