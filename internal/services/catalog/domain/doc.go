// Package domain models the build catalog: validated unlock requirements,
// build records and the indexes that answer selector lookups.
//
// Builds are a closed set of kinds. Balancers, splitters and factory
// splitters are indexed by input/output shape; valves and lab balancers by
// robotic arm tier. Every build is also indexed by category and name.
//
// A Catalog is filled once during startup, sealed, and then shared read-only.
package domain
