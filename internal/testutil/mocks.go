// Package testutil runs provisioners against the Pulumi mock monitor and
// records what they register.
package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/samber/lo"
)

const (
	Project = "demo"
	Stack   = "dev"

	AccountID = "123456789012"
	Region    = "us-west-2"

	ClusterEndpoint = "https://0123456789ABCDEF.gr7.us-west-2.eks.amazonaws.com"
	ClusterCA       = "LS0tLS1CRUdJTiBDRVJUSUZJQ0FURS0tLS0t"
)

var (
	PublicSubnetIDs  = []string{"subnet-pub-a", "subnet-pub-b"}
	PrivateSubnetIDs = []string{"subnet-priv-a", "subnet-priv-b"}
)

// Resource is a registration seen by the mock monitor.
type Resource struct {
	Type   string
	Name   string
	Inputs resource.PropertyMap
}

// Mocks implements pulumi.MockResourceMonitor and fills in the provider
// computed outputs the provisioners read.
type Mocks struct {
	mu        sync.Mutex
	resources []Resource
}

func (m *Mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	if args.TypeToken != "pulumi:pulumi:Stack" {
		m.mu.Lock()
		m.resources = append(m.resources, Resource{Type: args.TypeToken, Name: args.Name, Inputs: args.Inputs})
		m.mu.Unlock()
	}

	outputs := args.Inputs.Copy()
	switch args.TypeToken {
	case "aws:kms/key:Key":
		outputs["arn"] = resource.NewStringProperty(fmt.Sprintf("arn:aws:kms:%s:%s:key/%s", Region, AccountID, args.Name))
		outputs["keyId"] = resource.NewStringProperty(args.Name + "-id")
	case "aws:iam/role:Role":
		outputs["arn"] = resource.NewStringProperty(fmt.Sprintf("arn:aws:iam::%s:role/%s", AccountID, args.Name))
		outputs["name"] = resource.NewStringProperty(args.Name)
	case "aws:eks/cluster:Cluster":
		outputs["arn"] = resource.NewStringProperty(fmt.Sprintf("arn:aws:eks:%s:%s:cluster/%s", Region, AccountID, args.Name))
		outputs["endpoint"] = resource.NewStringProperty(ClusterEndpoint)
		outputs["certificateAuthority"] = resource.NewObjectProperty(resource.PropertyMap{
			"data": resource.NewStringProperty(ClusterCA),
		})
	case "awsx:ec2:Vpc":
		outputs["vpcId"] = resource.NewStringProperty("vpc-0123456789")
		outputs["publicSubnetIds"] = stringArray(PublicSubnetIDs)
		outputs["privateSubnetIds"] = stringArray(PrivateSubnetIDs)
	}
	return args.Name + "_id", outputs, nil
}

func (m *Mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	return args.Args, nil
}

// Resources returns every registration in order.
func (m *Mocks) Resources() []Resource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Resource(nil), m.resources...)
}

// OfType returns the registrations of one type token.
func (m *Mocks) OfType(typeToken string) []Resource {
	return lo.Filter(m.Resources(), func(r Resource, _ int) bool {
		return r.Type == typeToken
	})
}

// Find returns the registration with the given type token and name.
func (m *Mocks) Find(typeToken, name string) (Resource, bool) {
	return lo.Find(m.Resources(), func(r Resource) bool {
		return r.Type == typeToken && r.Name == name
	})
}

// Run executes program against m using the dev stack of the demo project.
func Run(m *Mocks, program pulumi.RunFunc) error {
	return pulumi.RunErr(program, pulumi.WithMocks(Project, Stack, m))
}

// Await blocks inside a program until out resolves.
func Await[T any](out pulumi.Output) (T, error) {
	ch := make(chan T, 1)
	out.ApplyT(func(v T) (interface{}, error) {
		ch <- v
		return nil, nil
	})

	select {
	case v := <-ch:
		return v, nil
	case <-time.After(10 * time.Second):
		var zero T
		return zero, fmt.Errorf("output of type %s did not resolve", out.ElementType())
	}
}

func stringArray(values []string) resource.PropertyValue {
	return resource.NewArrayProperty(lo.Map(values, func(v string, _ int) resource.PropertyValue {
		return resource.NewStringProperty(v)
	}))
}
