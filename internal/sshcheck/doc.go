// Package sshcheck verifies that the control host can reach cluster hosts
// over SSH before provisioning starts.
//
// For every target two things are checked, both read-only:
//   - authorized_keys: the operator's public key is installed for the login
//     user on the host;
//   - known_hosts: the host key the host presents is already trusted by the
//     control host.
//
// Hosts are probed concurrently with a bound; results are ordered by host
// name. Key problems on the control host abort the run before any host is
// contacted.
package sshcheck
