// Package cluster declares an EKS cluster running in Auto Mode.
//
// Auto Mode hands worker node provisioning, the EBS CSI driver and the load
// balancer controller to AWS, so the cluster is declared without node groups
// or self managed addons. The cluster role carries the managed policies that
// let the control plane do that work; the node role is what Auto Mode
// launches instances with.
package cluster

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/eks"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/codefactoryhu/pulumi-eks-auto-mode/internal/network"
)

const AuthenticationModeAPI = "API"

var defaultNodePools = []string{"general-purpose", "system"}

type Spec struct {
	Name        string
	Environment string
	Version     string
	LogTypes    []string
	// UpgradePolicy is the EKS support type, STANDARD or EXTENDED.
	UpgradePolicy string
	Region        string

	EncryptionKeyArn pulumi.StringInput

	// DefaultStorageClass installs a default gp3 StorageClass backed by the
	// Auto Mode EBS CSI driver.
	DefaultStorageClass bool
}

// Cluster is a declared EKS cluster and the values derived from it.
type Cluster struct {
	Name    string
	Version string
	Arn     pulumi.StringOutput
	// Kubeconfig is the structured kubeconfig document.
	Kubeconfig pulumi.AnyOutput
	Endpoint   pulumi.StringOutput
}

// New declares the IAM roles and the cluster inside net, with secrets
// encrypted by spec.EncryptionKeyArn, and exports the cluster outputs.
func New(ctx *pulumi.Context, net network.Handle, spec Spec) (*Cluster, error) {
	ctx.Log.Info(fmt.Sprintf("declaring EKS Auto Mode cluster %s version %s", spec.Name, spec.Version), nil)

	tags := pulumi.StringMap{
		"Name":        pulumi.String(spec.Name),
		"Environment": pulumi.String(spec.Environment),
		"ManagedBy":   pulumi.String("Pulumi"),
	}

	clusterRole, err := newRole(ctx, spec.Name+"-cluster-role", "eks.amazonaws.com", clusterPolicies, tags)
	if err != nil {
		return nil, err
	}
	nodeRole, err := newRole(ctx, spec.Name+"-node-role", "ec2.amazonaws.com", nodePolicies, tags)
	if err != nil {
		return nil, err
	}

	upgradePolicy := spec.UpgradePolicy
	if upgradePolicy == "" {
		upgradePolicy = "STANDARD"
	}

	c, err := eks.NewCluster(ctx, spec.Name, &eks.ClusterArgs{
		Name:                   pulumi.String(spec.Name),
		Version:                pulumi.String(spec.Version),
		RoleArn:                clusterRole.Arn,
		EnabledClusterLogTypes: pulumi.ToStringArray(spec.LogTypes),
		AccessConfig: &eks.ClusterAccessConfigArgs{
			AuthenticationMode:                      pulumi.String(AuthenticationModeAPI),
			BootstrapClusterCreatorAdminPermissions: pulumi.Bool(true),
		},
		BootstrapSelfManagedAddons: pulumi.Bool(false),
		ComputeConfig: &eks.ClusterComputeConfigArgs{
			Enabled:     pulumi.Bool(true),
			NodePools:   pulumi.ToStringArray(defaultNodePools),
			NodeRoleArn: nodeRole.Arn,
		},
		StorageConfig: &eks.ClusterStorageConfigArgs{
			BlockStorage: &eks.ClusterStorageConfigBlockStorageArgs{
				Enabled: pulumi.Bool(true),
			},
		},
		KubernetesNetworkConfig: &eks.ClusterKubernetesNetworkConfigArgs{
			ElasticLoadBalancing: &eks.ClusterKubernetesNetworkConfigElasticLoadBalancingArgs{
				Enabled: pulumi.Bool(true),
			},
		},
		EncryptionConfig: &eks.ClusterEncryptionConfigArgs{
			Provider: &eks.ClusterEncryptionConfigProviderArgs{
				KeyArn: spec.EncryptionKeyArn,
			},
			Resources: pulumi.StringArray{pulumi.String("secrets")},
		},
		UpgradePolicy: &eks.ClusterUpgradePolicyArgs{
			SupportType: pulumi.String(upgradePolicy),
		},
		VpcConfig: &eks.ClusterVpcConfigArgs{
			SubnetIds:             net.SubnetIDs(),
			EndpointPrivateAccess: pulumi.Bool(true),
			EndpointPublicAccess:  pulumi.Bool(true),
		},
		Tags: tags,
	}, pulumi.DependsOn(append(clusterRole.attachments, nodeRole.attachments...)))
	if err != nil {
		return nil, err
	}

	name, region := spec.Name, spec.Region
	kubeconfig := pulumi.All(c.Endpoint, c.CertificateAuthority.Data()).ApplyT(func(all []interface{}) (interface{}, error) {
		endpoint, _ := all[0].(string)
		var ca string
		if data, ok := all[1].(*string); ok && data != nil {
			ca = *data
		}
		return Kubeconfig(name, endpoint, ca, region), nil
	}).(pulumi.AnyOutput)

	endpoint := kubeconfig.ApplyT(func(doc interface{}) string {
		return EndpointFromKubeconfig(doc)
	}).(pulumi.StringOutput)

	if spec.DefaultStorageClass {
		rendered := kubeconfig.ApplyT(func(doc interface{}) (string, error) {
			m, _ := doc.(map[string]interface{})
			return RenderKubeconfig(m)
		}).(pulumi.StringOutput)
		if err := newDefaultStorageClass(ctx, spec.Name, rendered, c); err != nil {
			return nil, err
		}
	}

	ctx.Export("cluster_name", pulumi.String(spec.Name))
	ctx.Export("kubeconfig", kubeconfig)
	ctx.Export("cluster_endpoint", endpoint)
	ctx.Export("cluster_version", pulumi.String(spec.Version))

	return &Cluster{
		Name:       spec.Name,
		Version:    spec.Version,
		Arn:        c.Arn,
		Kubeconfig: kubeconfig,
		Endpoint:   endpoint,
	}, nil
}
