package config

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

var (
	ErrMissingConfiguration = errors.New("missing required configuration")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

const DefaultUpgradePolicy = "STANDARD"

// LookupFunc resolves a fully qualified config key such as `vpc:vpc_ipv4_cidr_block`.
type LookupFunc func(key string) (string, bool)

type env struct {
	Region        string `envconfig:"AWS_REGION"`
	DefaultRegion string `envconfig:"AWS_DEFAULT_REGION"`
}

// Load reads the stack configuration of the running program.
func Load(ctx *pulumi.Context) (*Settings, error) {
	return LoadFrom(ctx.GetConfig, ctx.Stack(), ctx.Project())
}

// LoadFrom builds Settings from lookup. Every required key is checked before
// anything is parsed so that a run with an incomplete stack config fails
// without declaring a single resource.
func LoadFrom(lookup LookupFunc, stack, project string) (*Settings, error) {
	r := reader{lookup: lookup}

	cidr := r.require("vpc:vpc_ipv4_cidr_block")
	hostnames := r.require("vpc:vpc_enable_dns_hostnames")
	support := r.require("vpc:vpc_enable_dns_support")
	version := r.require("eks:version")
	logging := r.require("eks:clusterLogging")

	if len(r.missing) > 0 {
		return nil, errors.Wrapf(ErrMissingConfiguration, "keys %s", strings.Join(r.missing, ", "))
	}

	s := &Settings{
		Stack:   stack,
		Project: project,
		VPC: VPC{
			CidrBlock: cidr,
		},
		EKS: EKS{
			Version:       version,
			UpgradePolicy: DefaultUpgradePolicy,
		},
	}

	var err error
	if s.VPC.EnableDNSHostnames, err = parseBool("vpc:vpc_enable_dns_hostnames", hostnames); err != nil {
		return nil, err
	}
	if s.VPC.EnableDNSSupport, err = parseBool("vpc:vpc_enable_dns_support", support); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(logging), &s.EKS.ClusterLogging); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "eks:clusterLogging is not a list of strings: %v", err)
	}
	if v, ok := lookup("eks:upgradePolicy"); ok && v != "" {
		s.EKS.UpgradePolicy = v
	}
	if v, ok := lookup("eks:defaultStorageClass"); ok && v != "" {
		if s.EKS.DefaultStorageClass, err = parseBool("eks:defaultStorageClass", v); err != nil {
			return nil, err
		}
	}

	region, err := resolveRegion(lookup)
	if err != nil {
		return nil, err
	}
	s.Region = region

	if err := validator.New().Struct(s); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "%v", err)
	}
	return s, nil
}

func resolveRegion(lookup LookupFunc) (string, error) {
	if v, ok := lookup("aws:region"); ok && v != "" {
		return v, nil
	}
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return "", errors.Wrap(err, "reading environment")
	}
	if e.Region != "" {
		return e.Region, nil
	}
	if e.DefaultRegion != "" {
		return e.DefaultRegion, nil
	}
	return "", errors.Wrap(ErrMissingConfiguration, "keys aws:region")
}

type reader struct {
	lookup  LookupFunc
	missing []string
}

func (r *reader) require(key string) string {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		r.missing = append(r.missing, key)
	}
	return v
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(ErrInvalidConfiguration, "%s: %q is not a boolean", key, v)
	}
	return b, nil
}
