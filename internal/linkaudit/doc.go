// Package linkaudit checks whether the hosts behind catalog universal links
// publish an apple-app-site-association file that declares link paths.
//
// Catalogs are read with the same tolerant decoding the merge engine uses.
// Each app's candidate hosts are probed in order until one answers; apps are
// audited concurrently with a bounded errgroup and reported in input order.
package linkaudit
