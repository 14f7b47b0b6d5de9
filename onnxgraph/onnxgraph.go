// Package onnxgraph exposes ONNX models through the graph.Graph interface so that they
// can be analysed the same way as OpenVINO IR descriptors.
//
// Graph inputs become Parameter nodes and graph outputs become Result nodes, matching the
// IR convention. The model metadata_props are reported as the generation parameters.
package onnxgraph

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/advancedclimatesystems/gonnx/onnx"
	"github.com/phuslu/log"
	"google.golang.org/protobuf/proto"

	"github.com/knights-analytics/modelanalyzer/graph"
	util "github.com/knights-analytics/modelanalyzer/utils"
)

const (
	parameterType = "Parameter"
	resultType    = "Result"
)

// Operators whose axis attribute default moved from 1 to -1 in opset 13.
var normalizationOps = map[string]bool{
	"Softmax":    true,
	"LogSoftmax": true,
	"Hardmax":    true,
}

const axisDefaultChangeOpset = 13

// ReadModel loads the .onnx file at path, a local path or an s3:// URL.
func ReadModel(ctx context.Context, path string) (*graph.Network, error) {
	data, err := util.ReadFileBytes(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	network, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}
	log.Debug().Str("descriptor", path).Str("format", string(network.Source)).Int64("version", network.Version).
		Int("layers", len(network.Layers)).Msg("network loaded")
	return network, nil
}

// Parse decodes a serialised ONNX ModelProto.
func Parse(data []byte) (*graph.Network, error) {
	model := &onnx.ModelProto{}
	if err := proto.Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal onnx model: %w", err)
	}
	return FromProto(model)
}

// FromProto converts an already decoded model.
func FromProto(model *onnx.ModelProto) (*graph.Network, error) {
	g := model.GetGraph()
	if g == nil {
		return nil, fmt.Errorf("model has no graph")
	}

	network := &graph.Network{
		NetName:    g.GetName(),
		Source:     graph.FormatONNX,
		Version:    model.GetIrVersion(),
		HasVersion: model.GetIrVersion() > 0,
	}

	ports := map[string]graph.Port{}
	for _, infos := range [][]*onnx.ValueInfoProto{g.GetInput(), g.GetValueInfo(), g.GetOutput()} {
		for _, info := range infos {
			ports[info.GetName()] = portFromValueInfo(info)
		}
	}
	portFor := func(name string) graph.Port {
		if p, ok := ports[name]; ok {
			return p
		}
		return graph.Port{ID: name}
	}

	opset := defaultOpset(model)

	initializers := map[string]bool{}
	for _, init := range g.GetInitializer() {
		initializers[init.GetName()] = true
	}

	for _, input := range g.GetInput() {
		if initializers[input.GetName()] {
			continue
		}
		network.Layers = append(network.Layers, graph.Node{
			ID:      input.GetName(),
			Name:    input.GetName(),
			Type:    parameterType,
			Outputs: []graph.Port{portFor(input.GetName())},
		})
	}

	for i, node := range g.GetNode() {
		converted := graph.Node{
			ID:          strconv.Itoa(i),
			Name:        node.GetName(),
			Type:        node.GetOpType(),
			Version:     node.GetDomain(),
			Attributes:  map[string]string{},
			RuntimeInfo: map[string]string{},
		}
		for _, attr := range node.GetAttribute() {
			if value, ok := attributeString(attr); ok {
				converted.Attributes[attr.GetName()] = value
			}
		}
		if _, ok := converted.Attributes["axis"]; !ok && opset > 0 && isDefaultDomain(node.GetDomain()) &&
			normalizationOps[node.GetOpType()] {
			converted.Attributes["axis"] = defaultAxis(opset)
		}
		for _, name := range node.GetInput() {
			if name != "" {
				converted.Inputs = append(converted.Inputs, portFor(name))
			}
		}
		for _, name := range node.GetOutput() {
			converted.Outputs = append(converted.Outputs, portFor(name))
		}
		network.Layers = append(network.Layers, converted)
	}

	for _, output := range g.GetOutput() {
		network.Layers = append(network.Layers, graph.Node{
			ID:     output.GetName(),
			Name:   output.GetName(),
			Type:   resultType,
			Inputs: []graph.Port{portFor(output.GetName())},
		})
	}

	if props := model.GetMetadataProps(); len(props) > 0 {
		meta := &graph.Metadata{
			GeneratorVersion: strings.TrimSpace(model.GetProducerName() + " " + model.GetProducerVersion()),
			Params:           make(map[string]string, len(props)),
		}
		for _, prop := range props {
			meta.Params[prop.GetKey()] = prop.GetValue()
		}
		network.Meta = meta
	}
	return network, nil
}

// defaultOpset returns the version of the default operator set, 0 if the model does
// not import it.
func defaultOpset(model *onnx.ModelProto) int64 {
	for _, opset := range model.GetOpsetImport() {
		if isDefaultDomain(opset.GetDomain()) {
			return opset.GetVersion()
		}
	}
	return 0
}

func isDefaultDomain(domain string) bool {
	return domain == "" || domain == "ai.onnx"
}

func defaultAxis(opset int64) string {
	if opset >= axisDefaultChangeOpset {
		return "-1"
	}
	return "1"
}

func portFromValueInfo(info *onnx.ValueInfoProto) graph.Port {
	port := graph.Port{ID: info.GetName()}
	tensorType := info.GetType().GetTensorType()
	if tensorType == nil {
		return port
	}
	port.Precision = onnx.TensorProto_DataType(tensorType.GetElemType()).String()
	for _, dim := range tensorType.GetShape().GetDim() {
		// symbolic dimensions such as "batch" and unset ones are dynamic
		if dim.GetValue() == nil || dim.GetDimParam() != "" || dim.GetDimValue() < 0 {
			port.Dims = append(port.Dims, -1)
		} else {
			port.Dims = append(port.Dims, dim.GetDimValue())
		}
	}
	return port
}

// attributeString renders scalar and list attributes the way IR serialises layer data.
// Tensor and subgraph attributes are skipped.
func attributeString(attr *onnx.AttributeProto) (string, bool) {
	switch attr.GetType() {
	case onnx.AttributeProto_FLOAT:
		return strconv.FormatFloat(float64(attr.GetF()), 'g', -1, 32), true
	case onnx.AttributeProto_INT:
		return strconv.FormatInt(attr.GetI(), 10), true
	case onnx.AttributeProto_STRING:
		return string(attr.GetS()), true
	case onnx.AttributeProto_FLOATS:
		values := make([]string, len(attr.GetFloats()))
		for i, f := range attr.GetFloats() {
			values[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
		}
		return strings.Join(values, ","), true
	case onnx.AttributeProto_INTS:
		values := make([]string, len(attr.GetInts()))
		for i, v := range attr.GetInts() {
			values[i] = strconv.FormatInt(v, 10)
		}
		return strings.Join(values, ","), true
	case onnx.AttributeProto_STRINGS:
		values := make([]string, len(attr.GetStrings()))
		for i, s := range attr.GetStrings() {
			values[i] = string(s)
		}
		return strings.Join(values, ","), true
	default:
		return "", false
	}
}
