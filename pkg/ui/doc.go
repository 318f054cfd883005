// Package ui prints the banner, status lines and the end-of-run summary to
// the terminal.
package ui
