// Package testing provides test utilities, builders, and fixtures shared by
// the package tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - InventoryBuilder: Fluent builder for inventory documents
//   - SSHServer: In-process SSH server serving a fake home directory
//   - Key and known_hosts helpers backed by the keygen package
//
// Usage:
//
//	path := testutil.ValidInventory(2).
//	    WithHost("masters", "master3", testutil.MasterVars("master3", "10.0.10.13")).
//	    Write(t)
//
//	srv := testutil.NewSSHServer(t, testutil.WithAuthorizedKey(kp.PublicKey))
package testing
