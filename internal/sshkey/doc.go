// Package sshkey resolves and loads the SSH identity used to reach cluster
// hosts.
//
// A key is named the way ansible_ssh_private_key_file names it: an absolute
// or relative path, a path starting with "~", or a bare file name that is
// looked up in ~/.ssh. Loading never prompts: a passphrase-protected key is
// identified by its public half alone.
package sshkey
