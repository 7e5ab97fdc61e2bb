// Package network declares the VPC the cluster runs in.
//
// Subnet address allocation is left to the awsx allocator; this package only
// decides how many subnet groups exist and how they are tagged so that the
// AWS load balancer controller of the cluster can discover them.
package network

import (
	"fmt"

	"github.com/pulumi/pulumi-awsx/sdk/v2/go/awsx/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/samber/lo"
)

type SubnetRole string

const (
	RolePublic  SubnetRole = "public"
	RolePrivate SubnetRole = "private"
)

const (
	roleELBTag         = "kubernetes.io/role/elb"
	roleInternalELBTag = "kubernetes.io/role/internal-elb"
)

type Spec struct {
	// Name of the VPC resource.
	Name string
	// ClusterName is the cluster that is allowed to place load balancers in the subnets.
	ClusterName string
	Environment string

	CidrBlock          string
	EnableDNSHostnames bool
	EnableDNSSupport   bool
}

// Handle carries the deferred identifiers the cluster needs.
type Handle struct {
	VpcID            pulumi.StringOutput
	PublicSubnetIDs  pulumi.StringArrayOutput
	PrivateSubnetIDs pulumi.StringArrayOutput
}

// SubnetIDs returns public followed by private subnet IDs.
func (h Handle) SubnetIDs() pulumi.StringArrayOutput {
	return pulumi.All(h.PublicSubnetIDs, h.PrivateSubnetIDs).ApplyT(func(all []interface{}) []string {
		return lo.Flatten([][]string{all[0].([]string), all[1].([]string)})
	}).(pulumi.StringArrayOutput)
}

// ClusterTag is the ownership tag key the cluster looks for on its subnets.
func ClusterTag(clusterName string) string {
	return fmt.Sprintf("kubernetes.io/cluster/%s", clusterName)
}

// SubnetTags returns the tags of the subnet group with the given role.
func SubnetTags(clusterName string, role SubnetRole) map[string]string {
	tags := map[string]string{
		ClusterTag(clusterName): "shared",
	}
	switch role {
	case RolePublic:
		tags[roleELBTag] = "1"
	case RolePrivate:
		tags[roleInternalELBTag] = "1"
	}
	return tags
}

// New declares the VPC with one public and one private subnet group and
// exports its identifiers.
func New(ctx *pulumi.Context, spec Spec) (*Handle, error) {
	strategy := ec2.SubnetAllocationStrategyAuto

	vpc, err := ec2.NewVpc(ctx, spec.Name, &ec2.VpcArgs{
		CidrBlock: pulumi.StringRef(spec.CidrBlock),
		SubnetSpecs: []ec2.SubnetSpecArgs{
			{
				Type: ec2.SubnetTypePublic,
				Tags: pulumi.ToStringMap(SubnetTags(spec.ClusterName, RolePublic)),
			},
			{
				Type: ec2.SubnetTypePrivate,
				Tags: pulumi.ToStringMap(SubnetTags(spec.ClusterName, RolePrivate)),
			},
		},
		SubnetStrategy:     &strategy,
		EnableDnsHostnames: pulumi.Bool(spec.EnableDNSHostnames),
		EnableDnsSupport:   pulumi.Bool(spec.EnableDNSSupport),
		Tags: pulumi.StringMap{
			"Name":        pulumi.String(spec.Name),
			"Environment": pulumi.String(spec.Environment),
			"ManagedBy":   pulumi.String("Pulumi"),
		},
	})
	if err != nil {
		return nil, err
	}

	ctx.Export("vpc_id", vpc.VpcId)
	ctx.Export("public_subnet_ids", vpc.PublicSubnetIds)
	ctx.Export("private_subnet_ids", vpc.PrivateSubnetIds)

	return &Handle{
		VpcID:            vpc.VpcId,
		PublicSubnetIDs:  vpc.PublicSubnetIds,
		PrivateSubnetIDs: vpc.PrivateSubnetIds,
	}, nil
}
