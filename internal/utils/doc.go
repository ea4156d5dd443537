// Package utils holds small helpers shared by the dispatcher: file name sanitizing,
// URL list reading, integer conversions and content type checks.
package utils
