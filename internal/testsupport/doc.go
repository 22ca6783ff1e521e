// Package testsupport holds fixtures shared by package tests: a config rooted
// in a temp directory and helpers for writing inbox and catalog files.
package testsupport
