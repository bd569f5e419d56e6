// Package netutil provides network helpers for reaching cluster hosts.
package netutil
