// Package version provides centralized version information for jtrust.
package version

// Version holds the current version of jtrust. This value can be
// overridden at build time using ldflags.
var Version = "0.1.0"
