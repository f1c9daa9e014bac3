package gltf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Document errors.
var (
	ErrNoDefaultScene = errors.New("document has no default scene")
	ErrMalformedField = errors.New("malformed glTF field")
)

// Document is a parsed glTF JSON document.
type Document struct {
	root *Object
}

// Node is a read-only view of one entry in the document's nodes array.
type Node struct {
	Index   int    // Position in the nodes array (the node id)
	Mesh    int    // Mesh reference, valid when HasMesh is set
	HasMesh bool
	Name    string // Valid when HasName is set; may be empty
	HasName bool
}

// Parse decodes a glTF JSON document.
func Parse(data []byte) (*Document, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	root, ok := v.(*Object)
	if !ok {
		return nil, ErrNotObject
	}
	return &Document{root: root}, nil
}

// Load reads and parses a glTF JSON file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Root returns the top-level object.
func (d *Document) Root() *Object {
	return d.root
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{root: CloneValue(d.root).(*Object)}
}

// Marshal serializes the document with 4-space indentation.
func (d *Document) Marshal() ([]byte, error) {
	return Encode(d.root)
}

// nodeObjects returns the objects of the nodes array.
// A missing nodes field is treated as empty.
func (d *Document) nodeObjects() ([]*Object, error) {
	raw, ok := d.root.Get("nodes")
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: nodes is %T, not an array", ErrMalformedField, raw)
	}
	objs := make([]*Object, len(items))
	for i, item := range items {
		obj, ok := item.(*Object)
		if !ok {
			return nil, fmt.Errorf("%w: nodes[%d] is %T, not an object", ErrMalformedField, i, item)
		}
		objs[i] = obj
	}
	return objs, nil
}

// Nodes returns a view of every node in document order.
func (d *Document) Nodes() ([]Node, error) {
	objs, err := d.nodeObjects()
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, len(objs))
	for i, obj := range objs {
		n := Node{Index: i}
		if raw, ok := obj.Get("mesh"); ok {
			if mesh, ok := asInt(raw); ok {
				n.Mesh = mesh
				n.HasMesh = true
			}
		}
		if raw, ok := obj.Get("name"); ok {
			if name, ok := raw.(string); ok {
				n.Name = name
				n.HasName = true
			}
		}
		nodes[i] = n
	}
	return nodes, nil
}

// ZeroTranslations overwrites every node's translation with [0, 0, 0].
// Nodes without a translation gain one.
func (d *Document) ZeroTranslations() error {
	objs, err := d.nodeObjects()
	if err != nil {
		return err
	}
	for _, obj := range objs {
		obj.Set("translation", []any{json.Number("0"), json.Number("0"), json.Number("0")})
	}
	return nil
}

// defaultScene returns scenes[0].
func (d *Document) defaultScene() (*Object, error) {
	raw, ok := d.root.Get("scenes")
	if !ok {
		return nil, ErrNoDefaultScene
	}
	scenes, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: scenes is %T, not an array", ErrMalformedField, raw)
	}
	if len(scenes) == 0 {
		return nil, ErrNoDefaultScene
	}
	scene, ok := scenes[0].(*Object)
	if !ok {
		return nil, fmt.Errorf("%w: scenes[0] is %T, not an object", ErrMalformedField, scenes[0])
	}
	return scene, nil
}

// DefaultSceneNodes returns the node ids listed in scenes[0].nodes.
func (d *Document) DefaultSceneNodes() ([]int, error) {
	scene, err := d.defaultScene()
	if err != nil {
		return nil, err
	}
	raw, ok := scene.Get("nodes")
	if !ok {
		return nil, fmt.Errorf("%w: scenes[0] has no nodes", ErrMalformedField)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: scenes[0].nodes is %T, not an array", ErrMalformedField, raw)
	}
	ids := make([]int, len(items))
	for i, item := range items {
		id, ok := asInt(item)
		if !ok {
			return nil, fmt.Errorf("%w: scenes[0].nodes[%d] is not an integer", ErrMalformedField, i)
		}
		ids[i] = id
	}
	return ids, nil
}

// SetDefaultSceneNodes replaces scenes[0].nodes with ids.
func (d *Document) SetDefaultSceneNodes(ids []int) error {
	scene, err := d.defaultScene()
	if err != nil {
		return err
	}
	items := make([]any, len(ids))
	for i, id := range ids {
		items[i] = json.Number(strconv.Itoa(id))
	}
	scene.Set("nodes", items)
	return nil
}

// asInt converts an integral JSON number to int.
func asInt(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}
