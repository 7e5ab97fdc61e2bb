package cluster

import (
	"github.com/pulumi/pulumi-kubernetes/sdk/v4/go/kubernetes"
	metav1 "github.com/pulumi/pulumi-kubernetes/sdk/v4/go/kubernetes/meta/v1"
	storagev1 "github.com/pulumi/pulumi-kubernetes/sdk/v4/go/kubernetes/storage/v1"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const (
	StorageClassName   = "auto-ebs-sc"
	autoModeEBSDriver  = "ebs.csi.eks.amazonaws.com"
	defaultClassMarker = "storageclass.kubernetes.io/is-default-class"
)

func newDefaultStorageClass(ctx *pulumi.Context, name string, kubeconfig pulumi.StringOutput, cluster pulumi.Resource) error {
	provider, err := kubernetes.NewProvider(ctx, name+"-k8s", &kubernetes.ProviderArgs{
		Kubeconfig: kubeconfig,
	}, pulumi.DependsOn([]pulumi.Resource{cluster}))
	if err != nil {
		return err
	}

	_, err = storagev1.NewStorageClass(ctx, name+"-"+StorageClassName, &storagev1.StorageClassArgs{
		Metadata: &metav1.ObjectMetaArgs{
			Name: pulumi.String(StorageClassName),
			Annotations: pulumi.StringMap{
				defaultClassMarker: pulumi.String("true"),
			},
		},
		Provisioner:       pulumi.String(autoModeEBSDriver),
		VolumeBindingMode: pulumi.String("WaitForFirstConsumer"),
		Parameters: pulumi.StringMap{
			"type":      pulumi.String("gp3"),
			"encrypted": pulumi.String("true"),
		},
	}, pulumi.Provider(provider))
	return err
}
