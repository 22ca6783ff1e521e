// Package main hosts the appcatalog CLI.
//
// The Cobra command tree resolves configuration once, builds the structured
// logger, and hands off to the internal packages: merge drives the intake
// runner, requests converts form exports, index writes search indexes, audit
// probes universal link hosts, and history lists past runs. Stdout carries
// machine-readable output; logs and human summaries go to stderr.
package main
