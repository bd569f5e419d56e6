// Package ssh provides a read-only SSH probe for cluster hosts.
//
// A probe dials the host with a bounded timeout, records the host key the
// server presents during the handshake, authenticates with the configured
// key (plus any ssh-agent identities) and reads the login user's
// authorized_keys file over SFTP, falling back to "cat" over an exec
// session when the server has no SFTP subsystem.
//
// The probe never writes: it does not install keys and does not touch the
// local known_hosts file. Host keys are accepted during the handshake only so
// they can be compared against known_hosts by the caller.
package ssh
