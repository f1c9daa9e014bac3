package splitter

import (
	"fmt"

	"github.com/Faultbox/tilesplit/pkg/gltf"
)

// MeshNames maps a mesh index to the name of the node that uses it.
type MeshNames map[int]string

// BuildMeshNames indexes nodes by mesh in document order. When several nodes
// share a mesh the last one wins. Nodes without a mesh or a name are skipped.
// An empty name is still a name.
func BuildMeshNames(nodes []gltf.Node) MeshNames {
	names := make(MeshNames, len(nodes))
	for _, n := range nodes {
		if !n.HasMesh || !n.HasName {
			continue
		}
		names[n.Mesh] = n.Name
	}
	return names
}

// ResolveName returns the tile name for a default-scene node id.
func ResolveName(nodes []gltf.Node, names MeshNames, id int) (string, error) {
	if id < 0 || id >= len(nodes) {
		return "", fmt.Errorf("%w: node %d out of range (%d nodes)", ErrLookup, id, len(nodes))
	}
	n := nodes[id]
	if !n.HasMesh {
		return "", fmt.Errorf("%w: node %d has no mesh", ErrLookup, id)
	}
	name, ok := names[n.Mesh]
	if !ok {
		return "", fmt.Errorf("%w: mesh %d of node %d is not named", ErrLookup, n.Mesh, id)
	}
	return name, nil
}
