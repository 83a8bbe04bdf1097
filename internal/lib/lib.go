// Package lib holds helpers that do not belong to a single layer.
//
// The utils subpackage renders command results for the CLI.
package lib
