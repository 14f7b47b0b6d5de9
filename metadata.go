package modelanalyzer

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/knights-analytics/modelanalyzer/graph"
)

// IR versions below this one were produced by the legacy generation pipeline.
const minSupportedIRVersion = 10

// Generation parameters that, when set, mean the descriptor was produced in legacy mode.
var legacyGenerationFlags = []string{"generate_deprecated_IR_V7", "legacy_ir_generation"}

// Runtime info entries whose values name the primitive implementation.
var primitiveHintKeys = map[string]bool{
	"PrimitivesPriority":  true,
	"primitives_priority": true,
}

var convolutionTypes = map[string]bool{
	"Convolution":       true,
	"GroupConvolution":  true,
	"BinaryConvolution": true,
}

// BackgroundClass tells whether a network reserves a class for "no object".
type BackgroundClass int

const (
	// BackgroundClassUnknown is reported when the architecture does not encode the information.
	BackgroundClassUnknown BackgroundClass = iota
	BackgroundClassAbsent
	BackgroundClassPresent
)

func (b BackgroundClass) String() string {
	switch b {
	case BackgroundClassAbsent:
		return "absent"
	case BackgroundClassPresent:
		return "present"
	default:
		return "unknown"
	}
}

// NetworkMetaData answers metadata queries about a parsed network. It never modifies
// the graph and all its queries are deterministic, so the same instance can be queried
// any number of times.
type NetworkMetaData struct {
	network        graph.Graph
	descriptorPath string
}

// NewNetworkMetaData wraps an already parsed network and the path of its descriptor.
func NewNetworkMetaData(network graph.Graph, descriptorPath string) *NetworkMetaData {
	return &NetworkMetaData{
		network:        network,
		descriptorPath: descriptorPath,
	}
}

func (m *NetworkMetaData) Name() string {
	return m.network.Name()
}

func (m *NetworkMetaData) DescriptorPath() string {
	return m.descriptorPath
}

// Format returns the format the descriptor was read in.
func (m *NetworkMetaData) Format() graph.Format {
	return m.network.Format()
}

// IsObsolete reports whether the descriptor comes from the legacy generation pipeline:
// either its IR version predates v10 or the converter was asked for a legacy IR.
// A descriptor without generation metadata is judged on its version alone.
// ONNX versions are not IR versions and never make a network obsolete.
func (m *NetworkMetaData) IsObsolete() bool {
	version, ok := m.network.IRVersion()
	if ok && m.network.Format() == graph.FormatIR && version < minSupportedIRVersion {
		return true
	}
	meta, ok := m.network.Metadata()
	if !ok {
		return false
	}
	for _, flag := range legacyGenerationFlags {
		if strings.EqualFold(meta.Params[flag], "true") {
			return true
		}
	}
	return false
}

// IRVersion returns the format version recorded in the descriptor.
func (m *NetworkMetaData) IRVersion() (int64, error) {
	version, ok := m.network.IRVersion()
	if !ok {
		return 0, &MissingFieldError{Field: "ir_version"}
	}
	return version, nil
}

// MOParams returns the parameters the descriptor was generated with. Values are returned
// exactly as recorded, structured values such as shapes stay serialised as strings.
// The returned map is a copy.
func (m *NetworkMetaData) MOParams() (map[string]string, error) {
	meta, ok := m.network.Metadata()
	if !ok {
		return nil, &MissingFieldError{Field: "mo_params"}
	}
	return maps.Clone(meta.Params), nil
}

func (m *NetworkMetaData) moParam(name string) (string, error) {
	params, err := m.MOParams()
	if err != nil {
		return "", err
	}
	value, ok := params[name]
	if !ok {
		return "", &MissingFieldError{Field: name}
	}
	return value, nil
}

// Framework returns the source framework the descriptor was converted from (tf, onnx, caffe...).
func (m *NetworkMetaData) Framework() (string, error) {
	return m.moParam("framework")
}

// DataType returns the precision the descriptor was generated for (FP32, FP16...).
func (m *NetworkMetaData) DataType() (string, error) {
	return m.moParam("data_type")
}

// HasLayerOfType reports whether any node has one of the given types. Unknown type
// names simply never match.
func (m *NetworkMetaData) HasLayerOfType(layerTypes ...string) bool {
	if len(layerTypes) == 0 {
		return false
	}
	wanted := make(map[string]bool, len(layerTypes))
	for _, t := range layerTypes {
		wanted[t] = true
	}
	for _, node := range m.network.Nodes() {
		if wanted[node.Type] {
			return true
		}
	}
	return false
}

// IsInt8 reports whether the network is quantized.
func (m *NetworkMetaData) IsInt8() bool {
	return m.HasLayerOfType("FakeQuantize")
}

// NumClasses infers the class count from the detection or classification head.
// See headPolicies for how each architecture encodes it.
func (m *NetworkMetaData) NumClasses() (int, error) {
	head, policy, ok := m.head()
	if !ok {
		return 0, &NotFoundError{Role: "classification head"}
	}
	return policy.numClasses(head)
}

// HasBackgroundClass reports whether the head reserves a background class.
// BackgroundClassUnknown is returned when the architecture does not say.
func (m *NetworkMetaData) HasBackgroundClass() BackgroundClass {
	head, policy, ok := m.head()
	if !ok {
		return BackgroundClassUnknown
	}
	return policy.background(head)
}

// IsWinograd reports whether a convolution records the Winograd transform.
func (m *NetworkMetaData) IsWinograd() bool {
	for _, node := range m.network.Nodes() {
		if !convolutionTypes[node.Type] {
			continue
		}
		for k, v := range node.Attributes {
			if mentionsWinograd(k) || mentionsWinograd(v) {
				return true
			}
		}
		// other runtime info values, such as fused_names, carry layer names
		for k, v := range node.RuntimeInfo {
			if mentionsWinograd(k) || (primitiveHintKeys[k] && mentionsWinograd(v)) {
				return true
			}
		}
	}
	return false
}

func mentionsWinograd(s string) bool {
	return strings.Contains(strings.ToLower(s), "winograd")
}

// InputShapes maps every network input to its dimensions. Dynamic dimensions are -1.
func (m *NetworkMetaData) InputShapes() map[string][]int64 {
	shapes := map[string][]int64{}
	for _, node := range m.network.Nodes() {
		if node.Type != "Parameter" {
			continue
		}
		var dims []int64
		if len(node.Outputs) > 0 {
			dims = append(dims, node.Outputs[0].Dims...)
		}
		shapes[node.Name] = dims
	}
	return shapes
}

// InputElements maps every static network input to its number of elements.
// Inputs with a dynamic dimension are left out.
func (m *NetworkMetaData) InputElements() map[string]int {
	elements := map[string]int{}
	for _, node := range m.network.Nodes() {
		if node.Type != "Parameter" || len(node.Outputs) == 0 {
			continue
		}
		if shape, ok := node.Outputs[0].Shape(); ok {
			elements[node.Name] = shape.TotalSize()
		}
	}
	return elements
}

// LayerTypeCounts counts the nodes of each type.
func (m *NetworkMetaData) LayerTypeCounts() map[string]int {
	counts := map[string]int{}
	for _, node := range m.network.Nodes() {
		counts[node.Type]++
	}
	return counts
}

func (m *NetworkMetaData) head() (graph.Node, headPolicy, bool) {
	nodes := m.network.Nodes()
	for _, policy := range headPolicies {
		found := -1
		for i := range nodes {
			if !policy.types[nodes[i].Type] {
				continue
			}
			found = i
			if !policy.last {
				break
			}
		}
		if found >= 0 {
			return nodes[found], policy, true
		}
	}
	return graph.Node{}, headPolicy{}, false
}

func intAttribute(node graph.Node, name string) (int, error) {
	value, ok := node.Attribute(name)
	if !ok {
		return 0, &MissingFieldError{Field: name, Node: node.Name}
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("node %s: invalid %s %q: %w", node.Name, name, value, err)
	}
	return n, nil
}

// Architecture returns the family of the network head ("yolo", "ssd", "classification"),
// or an empty string if no known head is present.
func (m *NetworkMetaData) Architecture() string {
	_, policy, ok := m.head()
	if !ok {
		return ""
	}
	return policy.family
}
