package config

// Settings is the stack configuration, assembled once per run and handed to
// each provisioner.
type Settings struct {
	Stack   string `validate:"required"`
	Project string `validate:"required"`
	Region  string `validate:"required"`

	VPC VPC
	EKS EKS
}

// VPC is read from the `vpc` config namespace.
type VPC struct {
	CidrBlock          string `validate:"required,cidrv4"`
	EnableDNSHostnames bool
	EnableDNSSupport   bool
}

// EKS is read from the `eks` config namespace.
type EKS struct {
	Version             string   `validate:"required"`
	ClusterLogging      []string `validate:"dive,oneof=api audit authenticator controllerManager scheduler"`
	UpgradePolicy       string   `validate:"oneof=STANDARD EXTENDED"`
	DefaultStorageClass bool
}

// ClusterName is the name shared by the cluster, its key and its subnet tags.
func (s *Settings) ClusterName() string {
	return s.Stack + "-" + s.Project
}
