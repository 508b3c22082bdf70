// Hostgate is a utility toolkit for polite outbound HTTP: a per-host
// cool-down rate limiter and a reference-counted temporary file manager.
//
// The library packages under pkg/ are the product; this command provides
// supporting tooling:
//
//	# Validate a configuration file
//	hostgate validate --config config.yaml
//
//	# Remove orphaned temp files older than 24h
//	hostgate sweep --dir /tmp/hostgate --older-than 24h
//
//	# Show version information
//	hostgate version
package main

func main() {
	Execute()
}
