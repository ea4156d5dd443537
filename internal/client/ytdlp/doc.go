// Package ytdlp wraps the yt-dlp executable.
// It checks that the tool is installed, probes a URL for its JSON metadata,
// and runs download commands as child processes with the output streamed
// to the terminal. Arguments are always passed as a vector, never through a shell.
package ytdlp
