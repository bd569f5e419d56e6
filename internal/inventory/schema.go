package inventory

// Group names with a defined role in the cluster layout.
const (
	GroupBastion = "bastion"
	GroupMasters = "masters"
	GroupWorkers = "workers"
)

// Host variables understood by the validator.
const (
	FieldAddress  = "ansible_host"
	FieldHostname = "ansible_hostname"
	FieldUser     = "ansible_user"
	FieldKeyFile  = "ansible_ssh_private_key_file"
	FieldPort     = "ansible_port"
	FieldInternal = "internal_ip"
	FieldMgmt     = "mgmt_ip"
	FieldData     = "prod_data_ip"
)

// Cluster variables under all.vars.
const (
	VarPythonInterpreter  = "ansible_python_interpreter"
	VarControlVLANNetwork = "control_vlan_network"
	VarControlVLANGateway = "control_vlan_gateway"
	VarDataVLANNetwork    = "data_vlan_network"
	VarDataVLANGateway    = "data_vlan_gateway"
	VarLBVIPControl       = "lb_vip_control"
	VarLBVIPData          = "lb_vip_data"
)

// RequiredGroups must be present under all.children.
var RequiredGroups = []string{GroupBastion, GroupMasters}

// RequiredVars must be present under all.vars.
var RequiredVars = []string{
	VarPythonInterpreter,
	VarControlVLANNetwork,
	VarControlVLANGateway,
	VarDataVLANNetwork,
	VarDataVLANGateway,
	VarLBVIPControl,
	VarLBVIPData,
}

var networkVars = []string{VarControlVLANNetwork, VarDataVLANNetwork}

// addressVars are IP-valued vars and the network they are expected to sit in.
var addressVars = []struct {
	name    string
	network string
}{
	{VarControlVLANGateway, VarControlVLANNetwork},
	{VarDataVLANGateway, VarDataVLANNetwork},
	{VarLBVIPControl, VarControlVLANNetwork},
	{VarLBVIPData, VarDataVLANNetwork},
}

var baseHostFields = []string{FieldAddress, FieldUser, FieldKeyFile}

// RequiredHostFields returns the host variables a host in group must set.
func RequiredHostFields(group string) []string {
	fields := append([]string{}, baseHostFields...)
	switch group {
	case GroupBastion:
		fields = append(fields, FieldInternal)
	case GroupWorkers:
		fields = append(fields, FieldMgmt, FieldData)
	}
	return fields
}

// hostFieldNetwork names the network var a host field is expected to sit in.
var hostFieldNetwork = map[string]string{
	FieldData: VarDataVLANNetwork,
}
