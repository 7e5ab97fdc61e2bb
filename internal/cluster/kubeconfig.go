package cluster

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

const contextName = "aws"

// Kubeconfig builds the kubeconfig document for the cluster. Credentials are
// obtained by the aws CLI at connection time, the document itself holds no
// secret material.
func Kubeconfig(name, endpoint, caData, region string) map[string]interface{} {
	return map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "Config",
		"clusters": []interface{}{
			map[string]interface{}{
				"name": "kubernetes",
				"cluster": map[string]interface{}{
					"server":                     endpoint,
					"certificate-authority-data": caData,
				},
			},
		},
		"contexts": []interface{}{
			map[string]interface{}{
				"name": contextName,
				"context": map[string]interface{}{
					"cluster": "kubernetes",
					"user":    contextName,
				},
			},
		},
		"current-context": contextName,
		"users": []interface{}{
			map[string]interface{}{
				"name": contextName,
				"user": map[string]interface{}{
					"exec": map[string]interface{}{
						"apiVersion": "client.authentication.k8s.io/v1beta1",
						"command":    "aws",
						"args": []interface{}{
							"eks", "get-token",
							"--cluster-name", name,
							"--region", region,
							"--output", "json",
						},
					},
				},
			},
		},
	}
}

// EndpointFromKubeconfig returns clusters[0].cluster.server, or "" when the
// document is empty or does not have that shape.
func EndpointFromKubeconfig(doc interface{}) string {
	clusters, _ := field(doc, "clusters").([]interface{})
	if len(clusters) == 0 {
		return ""
	}
	server, _ := field(field(clusters[0], "cluster"), "server").(string)
	return server
}

// field reads key from both JSON style and yaml.v2 style maps.
func field(v interface{}, key string) interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m[key]
	case map[interface{}]interface{}:
		return m[key]
	}
	return nil
}

// RenderKubeconfig serializes doc for consumers that want a file.
func RenderKubeconfig(doc map[string]interface{}) (string, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// KubeconfigCommand is the CLI invocation that merges the cluster into the
// local kubeconfig.
func KubeconfigCommand(name, region string) string {
	return fmt.Sprintf("aws eks update-kubeconfig --name %s --region %s", name, region)
}
