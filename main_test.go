package main

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/require"

	"github.com/codefactoryhu/pulumi-eks-auto-mode/internal/config"
	"github.com/codefactoryhu/pulumi-eks-auto-mode/internal/testutil"
)

func stackConfig() map[string]string {
	return map[string]string{
		"aws:region":                   "us-west-2",
		"vpc:vpc_ipv4_cidr_block":      "10.0.0.0/16",
		"vpc:vpc_enable_dns_hostnames": "true",
		"vpc:vpc_enable_dns_support":   "true",
		"eks:version":                  "1.31",
		"eks:clusterLogging":           `["api","audit","authenticator"]`,
	}
}

func loadFrom(m map[string]string) loadFunc {
	return func(ctx *pulumi.Context) (*config.Settings, error) {
		return config.LoadFrom(func(key string) (string, bool) {
			v, ok := m[key]
			return v, ok
		}, ctx.Stack(), ctx.Project())
	}
}

func TestProgram(t *testing.T) {
	r := require.New(t)
	mocks := &testutil.Mocks{}

	r.NoError(testutil.Run(mocks, program(loadFrom(stackConfig()))))

	_, ok := mocks.Find("awsx:ec2:Vpc", "dev-demo-vpc")
	r.True(ok)
	_, ok = mocks.Find("aws:kms/key:Key", "dev-demo-kms-key")
	r.True(ok)
	_, ok = mocks.Find("aws:kms/alias:Alias", "dev-demo-kms-alias")
	r.True(ok)

	c, ok := mocks.Find("aws:eks/cluster:Cluster", "dev-demo")
	r.True(ok)
	r.Equal("arn:aws:kms:us-west-2:123456789012:key/dev-demo-kms-key",
		c.Inputs["encryptionConfig"].ObjectValue()["provider"].ObjectValue()["keyArn"].StringValue())
	r.Len(c.Inputs["vpcConfig"].ObjectValue()["subnetIds"].ArrayValue(),
		len(testutil.PublicSubnetIDs)+len(testutil.PrivateSubnetIDs))

	key, ok := mocks.Find("aws:kms/key:Key", "dev-demo-kms-key")
	r.True(ok)
	r.Equal(float64(clusterKeyDeletionWindowDays), key.Inputs["deletionWindowInDays"].NumberValue())
}

func TestProgramMissingConfiguration(t *testing.T) {
	r := require.New(t)
	mocks := &testutil.Mocks{}

	cfg := stackConfig()
	delete(cfg, "vpc:vpc_ipv4_cidr_block")

	err := testutil.Run(mocks, program(loadFrom(cfg)))
	r.Error(err)
	r.True(errors.Is(err, config.ErrMissingConfiguration), "got %v", err)
	r.Empty(mocks.Resources())
}
