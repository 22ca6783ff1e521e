// Package identity decides whether a draft record describes an application
// already in the catalog.
//
// Each signal (id, name, alias, host) is an independent Strategy over an
// Index; the Resolver composes them through a fixed priority list and stops
// at the first hit. The index is built once per region run and extended in
// place as records are admitted or merged. Existing keys are never
// reassigned, so earlier records keep ownership of shared aliases and hosts.
package identity
