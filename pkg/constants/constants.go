package constants

import "fmt"

const (
	ClustersPrefix = "/capture/clusters"

	VniMin = 1        // 0 is reserved for the default network segment
	VniMax = 16777215 // 2^24 - 1

	ConfigFileName = "capturectl"
)

func ClusterKey(cluster string) string {
	return fmt.Sprintf("%s/%s", ClustersPrefix, cluster)
}

func ServiceDetailsKey(cluster, component string) string {
	return fmt.Sprintf("%s/%s-details", ClusterKey(cluster), component)
}

func ConfigDetailsKey(cluster, component string) string {
	return fmt.Sprintf("%s/%s-config-details", ClusterKey(cluster), component)
}

func VpcKey(cluster, vpcID string) string {
	return fmt.Sprintf("%s/vpcs/%s", ClusterKey(cluster), vpcID)
}

func VpcsPrefix(cluster string) string {
	return ClusterKey(cluster) + "/vpcs/"
}

func VniCurrentKey(cluster string) string {
	return ClusterKey(cluster) + "/vni-current"
}

func VnisUserKey(cluster string) string {
	return ClusterKey(cluster) + "/vnis-user"
}

func VnisRecycledKey(cluster string) string {
	return ClusterKey(cluster) + "/vnis-recycled"
}

func ConfigObjectKey(component string, version int) string {
	return fmt.Sprintf("%s/%d/archive.zip", component, version)
}
