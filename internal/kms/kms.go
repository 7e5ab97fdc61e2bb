// Package kms declares customer managed KMS keys with a human readable alias.
package kms

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/kms"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const (
	MinDeletionWindowDays = 7
	MaxDeletionWindowDays = 30
)

type Spec struct {
	Name        string
	Description string
	// Purpose ends up in the Purpose tag.
	Purpose string
	// DeletionWindowDays is clamped into [7,30]; zero means 7.
	DeletionWindowDays int
}

// Key is a provisioned KMS key and its alias.
type Key struct {
	Arn   pulumi.StringOutput
	ID    pulumi.StringOutput
	Alias pulumi.StringOutput
}

// ClampDeletionWindow forces days into the range accepted by KMS.
func ClampDeletionWindow(days int) int {
	return max(MinDeletionWindowDays, min(days, MaxDeletionWindowDays))
}

// New declares the key, its `alias/<name>` alias and exports the key ARN as
// `<name>_kms_key_arn`.
func New(ctx *pulumi.Context, spec Spec) (*Key, error) {
	window := ClampDeletionWindow(spec.DeletionWindowDays)
	if window != spec.DeletionWindowDays && spec.DeletionWindowDays != 0 {
		ctx.Log.Debug(fmt.Sprintf("kms key %s: deletion window %d clamped to %d", spec.Name, spec.DeletionWindowDays, window), nil)
	}

	key, err := kms.NewKey(ctx, spec.Name+"-key", &kms.KeyArgs{
		Description:          pulumi.String(spec.Description),
		DeletionWindowInDays: pulumi.Int(window),
		EnableKeyRotation:    pulumi.Bool(true),
		Tags: pulumi.StringMap{
			"Name":      pulumi.String(spec.Name),
			"Purpose":   pulumi.String(spec.Purpose),
			"ManagedBy": pulumi.String("Pulumi"),
		},
	})
	if err != nil {
		return nil, err
	}

	alias, err := kms.NewAlias(ctx, spec.Name+"-alias", &kms.AliasArgs{
		Name:        pulumi.String(AliasName(spec.Name)),
		TargetKeyId: key.KeyId,
	})
	if err != nil {
		return nil, err
	}

	ctx.Export(spec.Name+"_kms_key_arn", key.Arn)

	return &Key{
		Arn:   key.Arn,
		ID:    key.KeyId,
		Alias: alias.Name,
	}, nil
}

func AliasName(name string) string {
	return "alias/" + name
}
