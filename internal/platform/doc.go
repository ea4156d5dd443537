// Package platform holds the static table of supported hosting platforms
// and classifies URLs against it.
//
// Each platform is described by a Profile: its domain fragments, quality
// ladder, capability flags and the hints shown when a download fails.
// Classification is pure: the lower-cased URL host is compared with every
// fragment in table order and the first match wins.
package platform
