// Package crashsym generates native debug symbols and uploads them to
// Crashlytics by driving the Crashlytics buildtools jar.
package crashsym

// Version is the crashsym release version.
const Version = "v0.3.0"
