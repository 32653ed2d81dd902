package dataset

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/swot-confluence/offline/pkg/errors"
)

// Node is an in-memory group used to build datasets without touching disk.
// Builders panic on inconsistent shapes since they are only fed literals.
type Node struct {
	vars   map[string]*Variable
	groups map[string]*Node
	dims   map[string]int
}

// NewNode creates an empty group.
func NewNode() *Node {
	return &Node{
		vars:   make(map[string]*Variable),
		groups: make(map[string]*Node),
		dims:   make(map[string]int),
	}
}

// Set defines a float variable. A nil shape means a 1-D variable of len(data).
func (n *Node) Set(name string, shape []int, data ...float64) *Node {
	if shape == nil {
		shape = []int{len(data)}
	}
	if size(shape) != len(data) {
		panic(fmt.Sprintf("dataset: %d values do not fill shape %v for %s", len(data), shape, name))
	}
	n.vars[name] = &Variable{Shape: append([]int(nil), shape...), Data: append([]float64(nil), data...)}
	return n
}

// SetScalar defines a zero-dimensional variable.
func (n *Node) SetScalar(name string, value float64) *Node {
	return n.Set(name, []int{}, value)
}

// SetInts defines an integer variable. A nil shape means a 1-D variable.
func (n *Node) SetInts(name string, shape []int, data ...int64) *Node {
	if shape == nil {
		shape = []int{len(data)}
	}
	if size(shape) != len(data) {
		panic(fmt.Sprintf("dataset: %d values do not fill shape %v for %s", len(data), shape, name))
	}
	floats := make([]float64, len(data))
	for i, x := range data {
		floats[i] = float64(x)
	}
	n.vars[name] = &Variable{
		Shape: append([]int(nil), shape...),
		Data:  floats,
		Ints:  append([]int64(nil), data...),
	}
	return n
}

// Remove deletes a variable.
func (n *Node) Remove(name string) *Node {
	delete(n.vars, name)
	return n
}

// SetDim defines a dimension.
func (n *Node) SetDim(name string, length int) *Node {
	n.dims[name] = length
	return n
}

// Sub returns the named subgroup, creating it if needed.
func (n *Node) Sub(name string) *Node {
	if g, ok := n.groups[name]; ok {
		return g
	}
	g := NewNode()
	n.groups[name] = g
	return g
}

// Variables lists the variable names in sorted order.
func (n *Node) Variables() []string {
	names := make([]string, 0, len(n.vars))
	for name := range n.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// memGroup is a read view of a Node inside a Memory file.
type memGroup struct {
	node *Node
	file string
	path string
}

func (g *memGroup) Path() string {
	return g.path
}

func (g *memGroup) HasVariable(name string) bool {
	_, ok := g.node.vars[name]
	return ok
}

func (g *memGroup) Variable(name string) (*Variable, error) {
	field := joinPath(g.path, name)
	v, ok := g.node.vars[name]
	if !ok {
		return nil, errors.NewSchemaMismatchError(g.file, field, "variable not found")
	}
	out := &Variable{
		File:  g.file,
		Name:  field,
		Shape: append([]int(nil), v.Shape...),
		Data:  append([]float64(nil), v.Data...),
	}
	if v.Ints != nil {
		out.Ints = append([]int64(nil), v.Ints...)
	}
	return out, nil
}

func (g *memGroup) Group(name string) (Group, error) {
	sub, ok := g.node.groups[name]
	if !ok {
		return nil, errors.NewSchemaMismatchError(g.file, joinPath(g.path, name), "group not found")
	}
	return &memGroup{node: sub, file: g.file, path: joinPath(g.path, name)}, nil
}

func (g *memGroup) Dimension(name string) (int, bool) {
	n, ok := g.node.dims[name]
	return n, ok
}

type memDataset struct {
	memGroup
	owner *Memory
	once  sync.Once
}

func (d *memDataset) File() string {
	return d.file
}

func (d *memDataset) Close() error {
	d.once.Do(d.owner.release)
	return nil
}

// Memory is an in-memory Decoder backed by an afero memory filesystem. Each
// added file also exists as an empty placeholder on the filesystem so that
// existence checks and directory scans see it.
type Memory struct {
	fs afero.Fs

	mu    sync.Mutex
	files map[string]*Node
	open  int
	opens int
}

// NewMemory creates an empty in-memory dataset collection.
func NewMemory() *Memory {
	return &Memory{
		fs:    afero.NewMemMapFs(),
		files: make(map[string]*Node),
	}
}

// Add registers root as the content of the file at path.
func (m *Memory) Add(path string, root *Node) error {
	if err := m.Touch(path); err != nil {
		return err
	}
	m.mu.Lock()
	m.files[path] = root
	m.mu.Unlock()
	return nil
}

// Touch creates a file that exists on the filesystem but cannot be decoded.
func (m *Memory) Touch(path string) error {
	if err := m.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := afero.WriteFile(m.fs, path, nil, 0o644); err != nil {
		return errors.WrapIO("create", path, err)
	}
	return nil
}

// Decode implements Decoder.
func (m *Memory) Decode(path string) (Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root, ok := m.files[path]
	if !ok {
		return nil, errors.WrapIO("open", path, fmt.Errorf("not a dataset"))
	}
	m.open++
	m.opens++
	return &memDataset{memGroup: memGroup{node: root, file: path}, owner: m}, nil
}

// Store returns a Store over this collection.
func (m *Memory) Store() *Store {
	return NewStore(WithFs(m.fs), WithDecoder(m))
}

// Fs returns the backing filesystem.
func (m *Memory) Fs() afero.Fs {
	return m.fs
}

// Outstanding returns the number of decoded datasets not yet closed.
func (m *Memory) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Opens returns the total number of successful decodes.
func (m *Memory) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

func (m *Memory) release() {
	m.mu.Lock()
	m.open--
	m.mu.Unlock()
}
