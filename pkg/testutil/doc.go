// Package testutil provides shared test doubles for prepenv components.
//
// The central piece is MockRunner, a command.Runner that records every
// invocation instead of executing it, so provisioning logic can be
// exercised without a Python toolchain on the host.
package testutil
