package cluster

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const policyPrefix = "arn:aws:iam::aws:policy/"

// Auto Mode needs the control plane to manage compute, storage, load
// balancing and networking on behalf of the cluster.
var clusterPolicies = []string{
	policyPrefix + "AmazonEKSClusterPolicy",
	policyPrefix + "AmazonEKSComputePolicy",
	policyPrefix + "AmazonEKSBlockStoragePolicy",
	policyPrefix + "AmazonEKSLoadBalancingPolicy",
	policyPrefix + "AmazonEKSNetworkingPolicy",
}

var nodePolicies = []string{
	policyPrefix + "AmazonEKSWorkerNodeMinimalPolicy",
	policyPrefix + "AmazonEC2ContainerRegistryPullOnly",
}

type role struct {
	*iam.Role
	attachments []pulumi.Resource
}

func assumeRolePolicy(service string) string {
	return fmt.Sprintf(`{
    "Version": "2012-10-17",
    "Statement": [{
        "Effect": "Allow",
        "Principal": {
            "Service": "%s"
        },
        "Action": ["sts:AssumeRole", "sts:TagSession"]
    }]
}`, service)
}

func newRole(ctx *pulumi.Context, name, service string, policies []string, tags pulumi.StringMap) (*role, error) {
	r, err := iam.NewRole(ctx, name, &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(assumeRolePolicy(service)),
		Tags:             tags,
	})
	if err != nil {
		return nil, err
	}

	out := &role{Role: r}
	for i, policy := range policies {
		a, err := iam.NewRolePolicyAttachment(ctx, fmt.Sprintf("%s-rpa-%d", name, i), &iam.RolePolicyAttachmentArgs{
			Role:      r.Name,
			PolicyArn: pulumi.String(policy),
		})
		if err != nil {
			return nil, err
		}
		out.attachments = append(out.attachments, a)
	}
	return out, nil
}
