// Package inventory loads and validates the Ansible-style host inventory
// consumed by the cluster bootstrap.
//
// Loading is strict about YAML well-formedness ([ParseError] is fatal) and
// lenient about content: [Validate] walks every group, host and field and
// reports each defect as a FAIL entry instead of stopping at the first one.
// The walk runs on the yaml.Node tree so entries follow document order and
// carry source line numbers.
package inventory
