package graph

import (
	"gorgonia.org/tensor"

	"github.com/knights-analytics/modelanalyzer/util/safeconv"
)

// Graph is the read-only view of a parsed network description that the analyzer
// queries. Readers for the different descriptor formats (OpenVINO IR, ONNX) all
// produce a Graph, so metadata queries never depend on the on-disk format.
type Graph interface {
	Name() string               // Name of the network as recorded in the descriptor
	Format() Format             // On-disk format the graph was read from
	IRVersion() (int64, bool)   // Format version of the descriptor, false if not recorded
	Nodes() []Node              // All nodes in graph order
	Metadata() (Metadata, bool) // Generation metadata, false if the descriptor has none
}

// Format identifies the descriptor format.
type Format string

const (
	FormatIR   Format = "IR"
	FormatONNX Format = "ONNX"
)

// Node is a single layer of the network.
type Node struct {
	ID      string
	Name    string
	Type    string
	Version string
	// Attributes holds the layer parameters exactly as serialised in the descriptor.
	Attributes map[string]string
	// RuntimeInfo holds run-time hints attached to the layer (fused names, primitive priorities...).
	RuntimeInfo map[string]string
	Inputs      []Port
	Outputs     []Port
}

// Attribute returns the named layer parameter.
func (n Node) Attribute(name string) (string, bool) {
	v, ok := n.Attributes[name]
	return v, ok
}

// Port is an input or output of a node.
type Port struct {
	ID        string
	Precision string
	// Dims are the port dimensions, dynamic dimensions are -1.
	Dims []int64
}

// Dynamic reports whether any dimension of the port is unknown.
func (p Port) Dynamic() bool {
	for _, d := range p.Dims {
		if d < 0 {
			return true
		}
	}
	return false
}

// Shape returns the port dimensions as a tensor shape. The second return value is
// false if the port is dynamic.
func (p Port) Shape() (tensor.Shape, bool) {
	if p.Dynamic() {
		return nil, false
	}
	return tensor.Shape(safeconv.Int64SliceToIntSlice(p.Dims)), true
}

// Metadata is the record a model converter leaves in the descriptor about how it
// was generated.
type Metadata struct {
	// GeneratorVersion is the version of the converter that produced the descriptor.
	GeneratorVersion string
	// Params maps each recorded conversion parameter to its value, as recorded.
	Params map[string]string
}

// Network is the in-memory Graph produced by the readers.
type Network struct {
	NetName    string
	Source     Format
	Version    int64
	HasVersion bool
	Layers     []Node
	Meta       *Metadata
}

func (n *Network) Name() string {
	return n.NetName
}

func (n *Network) Format() Format {
	return n.Source
}

func (n *Network) IRVersion() (int64, bool) {
	return n.Version, n.HasVersion
}

func (n *Network) Nodes() []Node {
	return n.Layers
}

func (n *Network) Metadata() (Metadata, bool) {
	if n.Meta == nil {
		return Metadata{}, false
	}
	return *n.Meta, true
}
