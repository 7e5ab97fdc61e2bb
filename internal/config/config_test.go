package config

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func stackConfig() map[string]string {
	return map[string]string{
		"aws:region":                   "us-west-2",
		"vpc:vpc_ipv4_cidr_block":      "10.0.0.0/16",
		"vpc:vpc_enable_dns_hostnames": "true",
		"vpc:vpc_enable_dns_support":   "true",
		"eks:version":                  "1.31",
		"eks:clusterLogging":           `["api","audit"]`,
	}
}

func lookupFrom(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadFrom(t *testing.T) {
	r := require.New(t)

	s, err := LoadFrom(lookupFrom(stackConfig()), "dev", "demo")
	r.NoError(err)
	r.Equal("dev-demo", s.ClusterName())
	r.Equal("us-west-2", s.Region)
	r.Equal("10.0.0.0/16", s.VPC.CidrBlock)
	r.True(s.VPC.EnableDNSHostnames)
	r.True(s.VPC.EnableDNSSupport)
	r.Equal("1.31", s.EKS.Version)
	r.Equal([]string{"api", "audit"}, s.EKS.ClusterLogging)
	r.Equal(DefaultUpgradePolicy, s.EKS.UpgradePolicy)
	r.False(s.EKS.DefaultStorageClass)
}

func TestLoadFromOptionalKeys(t *testing.T) {
	r := require.New(t)

	cfg := stackConfig()
	cfg["eks:upgradePolicy"] = "EXTENDED"
	cfg["eks:defaultStorageClass"] = "true"

	s, err := LoadFrom(lookupFrom(cfg), "dev", "demo")
	r.NoError(err)
	r.Equal("EXTENDED", s.EKS.UpgradePolicy)
	r.True(s.EKS.DefaultStorageClass)
}

func TestLoadFromMissingKeys(t *testing.T) {
	for _, key := range []string{
		"vpc:vpc_ipv4_cidr_block",
		"vpc:vpc_enable_dns_hostnames",
		"vpc:vpc_enable_dns_support",
		"eks:version",
		"eks:clusterLogging",
	} {
		t.Run(key, func(t *testing.T) {
			r := require.New(t)

			cfg := stackConfig()
			delete(cfg, key)

			s, err := LoadFrom(lookupFrom(cfg), "dev", "demo")
			r.Nil(s)
			r.True(errors.Is(err, ErrMissingConfiguration))
			r.Contains(err.Error(), key)
		})
	}
}

func TestLoadFromRegionFallsBackToEnvironment(t *testing.T) {
	r := require.New(t)
	t.Setenv("AWS_REGION", "eu-central-1")

	cfg := stackConfig()
	delete(cfg, "aws:region")

	s, err := LoadFrom(lookupFrom(cfg), "dev", "demo")
	r.NoError(err)
	r.Equal("eu-central-1", s.Region)
}

func TestLoadFromMissingRegion(t *testing.T) {
	r := require.New(t)
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")

	cfg := stackConfig()
	delete(cfg, "aws:region")

	_, err := LoadFrom(lookupFrom(cfg), "dev", "demo")
	r.True(errors.Is(err, ErrMissingConfiguration))
}

func TestLoadFromInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bool", key: "vpc:vpc_enable_dns_support", value: "maybe"},
		{name: "cidr", key: "vpc:vpc_ipv4_cidr_block", value: "10.0.0.0"},
		{name: "log list", key: "eks:clusterLogging", value: "api"},
		{name: "log type", key: "eks:clusterLogging", value: `["everything"]`},
		{name: "upgrade policy", key: "eks:upgradePolicy", value: "LTS"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := require.New(t)

			cfg := stackConfig()
			cfg[test.key] = test.value

			_, err := LoadFrom(lookupFrom(cfg), "dev", "demo")
			r.True(errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}
}
