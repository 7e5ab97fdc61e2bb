package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/codefactoryhu/pulumi-eks-auto-mode/internal/cluster"
	"github.com/codefactoryhu/pulumi-eks-auto-mode/internal/config"
	"github.com/codefactoryhu/pulumi-eks-auto-mode/internal/kms"
	"github.com/codefactoryhu/pulumi-eks-auto-mode/internal/network"
)

// Secrets keys outlive the cluster for a while in case it has to be restored.
const clusterKeyDeletionWindowDays = 15

type loadFunc func(ctx *pulumi.Context) (*config.Settings, error)

func main() {
	pulumi.Run(program(config.Load))
}

func program(load loadFunc) pulumi.RunFunc {
	return func(ctx *pulumi.Context) error {
		cfg, err := load(ctx)
		if err != nil {
			return err
		}
		return deploy(ctx, cfg)
	}
}

func deploy(ctx *pulumi.Context, cfg *config.Settings) error {
	clusterName := cfg.ClusterName()

	vpc, err := network.New(ctx, network.Spec{
		Name:               clusterName + "-vpc",
		ClusterName:        clusterName,
		Environment:        cfg.Stack,
		CidrBlock:          cfg.VPC.CidrBlock,
		EnableDNSHostnames: cfg.VPC.EnableDNSHostnames,
		EnableDNSSupport:   cfg.VPC.EnableDNSSupport,
	})
	if err != nil {
		return err
	}

	key, err := kms.New(ctx, kms.Spec{
		Name:               clusterName + "-kms",
		Description:        "KMS key for EKS cluster encryption",
		Purpose:            "EKS cluster",
		DeletionWindowDays: clusterKeyDeletionWindowDays,
	})
	if err != nil {
		return err
	}

	eks, err := cluster.New(ctx, *vpc, cluster.Spec{
		Name:                clusterName,
		Environment:         cfg.Stack,
		Version:             cfg.EKS.Version,
		LogTypes:            cfg.EKS.ClusterLogging,
		UpgradePolicy:       cfg.EKS.UpgradePolicy,
		Region:              cfg.Region,
		EncryptionKeyArn:    key.Arn,
		DefaultStorageClass: cfg.EKS.DefaultStorageClass,
	})
	if err != nil {
		return err
	}

	ctx.Export("kubeconfig_command", pulumi.String(cluster.KubeconfigCommand(eks.Name, cfg.Region)))
	return nil
}
