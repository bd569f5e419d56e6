// Package keygen generates SSH key pairs.
//
// Private keys are produced in OpenSSH PEM format, optionally encrypted with
// a passphrase, and public keys in authorized_keys format. The generated
// files are what ssh-keygen would write to ~/.ssh.
package keygen
