package ir

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/knights-analytics/modelanalyzer/graph"
)

// Tags under which the model optimizer records its generation metadata.
const (
	generatorVersionTag = "MO_version"
	cliParametersTag    = "cli_parameters"        // IR v10, inside <meta_data>
	conversionParamsTag = "conversion_parameters" // IR v11, inside the network <rt_info>
	versionParam        = "version"
)

type xmlNet struct {
	XMLName  xml.Name    `xml:"net"`
	Name     string      `xml:"name,attr"`
	Version  string      `xml:"version,attr"`
	Layers   []xmlLayer  `xml:"layers>layer"`
	MetaData *xmlElement `xml:"meta_data"`
	RTInfo   *xmlElement `xml:"rt_info"`
}

type xmlLayer struct {
	ID      string       `xml:"id,attr"`
	Name    string       `xml:"name,attr"`
	Type    string       `xml:"type,attr"`
	Version string       `xml:"version,attr"`
	Data    *xmlElement  `xml:"data"`
	Inputs  []xmlPort    `xml:"input>port"`
	Outputs []xmlPort    `xml:"output>port"`
	RTInfo  []xmlElement `xml:"rt_info>attribute"`
}

type xmlPort struct {
	ID        string   `xml:"id,attr"`
	Precision string   `xml:"precision,attr"`
	Dims      []string `xml:"dim"`
}

// xmlElement captures an arbitrary element with its attributes and children.
type xmlElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []xmlElement `xml:",any"`
}

func (e *xmlElement) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *xmlElement) child(name string) *xmlElement {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			return &e.Children[i]
		}
	}
	return nil
}

// Parse decodes an OpenVINO IR descriptor.
func Parse(data []byte) (*graph.Network, error) {
	var net xmlNet
	decoder := xml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&net); err != nil {
		return nil, fmt.Errorf("failed to decode IR xml: %w", err)
	}

	network := &graph.Network{
		NetName: net.Name,
		Source:  graph.FormatIR,
		Layers:  make([]graph.Node, 0, len(net.Layers)),
	}

	if net.Version != "" {
		version, err := strconv.ParseInt(strings.TrimSpace(net.Version), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid IR version %q: %w", net.Version, err)
		}
		network.Version = version
		network.HasVersion = true
	}

	for i := range net.Layers {
		node, err := convertLayer(&net.Layers[i])
		if err != nil {
			return nil, err
		}
		network.Layers = append(network.Layers, node)
	}

	// IR v10 keeps the record in <meta_data>, IR v11 moved it to the network <rt_info>.
	if net.MetaData != nil {
		network.Meta = extractMetadata(net.MetaData, cliParametersTag)
	}
	if network.Meta == nil && net.RTInfo != nil {
		network.Meta = extractMetadata(net.RTInfo, conversionParamsTag)
	}
	return network, nil
}

func convertLayer(layer *xmlLayer) (graph.Node, error) {
	node := graph.Node{
		ID:          layer.ID,
		Name:        layer.Name,
		Type:        layer.Type,
		Version:     layer.Version,
		Attributes:  map[string]string{},
		RuntimeInfo: map[string]string{},
	}
	if layer.Data != nil {
		for _, a := range layer.Data.Attrs {
			node.Attributes[a.Name.Local] = a.Value
		}
	}
	for i := range layer.RTInfo {
		name, value, ok := runtimeAttribute(&layer.RTInfo[i])
		if ok {
			node.RuntimeInfo[name] = value
		}
	}

	var err error
	if node.Inputs, err = convertPorts(layer.Inputs); err != nil {
		return node, fmt.Errorf("layer %s (%s): %w", layer.Name, layer.Type, err)
	}
	if node.Outputs, err = convertPorts(layer.Outputs); err != nil {
		return node, fmt.Errorf("layer %s (%s): %w", layer.Name, layer.Type, err)
	}
	return node, nil
}

// runtimeAttribute reads <attribute name="..." value="..."/>. Older descriptors nest
// the values as <attribute name="..."><value value="..."/></attribute>, those are joined.
func runtimeAttribute(e *xmlElement) (string, string, bool) {
	name, ok := e.attr("name")
	if !ok {
		return "", "", false
	}
	if value, ok := e.attr("value"); ok {
		return name, value, true
	}
	var values []string
	for i := range e.Children {
		if value, ok := e.Children[i].attr("value"); ok {
			values = append(values, value)
		}
	}
	return name, strings.Join(values, ","), true
}

func convertPorts(ports []xmlPort) ([]graph.Port, error) {
	if len(ports) == 0 {
		return nil, nil
	}
	converted := make([]graph.Port, len(ports))
	for i, port := range ports {
		dims := make([]int64, len(port.Dims))
		for j, dim := range port.Dims {
			d, err := parseDim(dim)
			if err != nil {
				return nil, fmt.Errorf("port %s: %w", port.ID, err)
			}
			dims[j] = d
		}
		converted[i] = graph.Port{
			ID:        port.ID,
			Precision: port.Precision,
			Dims:      dims,
		}
	}
	return converted, nil
}

func parseDim(dim string) (int64, error) {
	dim = strings.TrimSpace(dim)
	if dim == "?" {
		return -1, nil
	}
	d, err := strconv.ParseInt(dim, 10, 64)
	if err != nil {
		return 0, errors.Join(fmt.Errorf("invalid dimension %q", dim), err)
	}
	if d < 0 {
		return -1, nil
	}
	return d, nil
}

// extractMetadata returns nil if the block records neither a generator version
// nor a parameter list.
func extractMetadata(block *xmlElement, paramsTag string) *graph.Metadata {
	var generatorVersion string
	if versionElement := block.child(generatorVersionTag); versionElement != nil {
		generatorVersion, _ = versionElement.attr("value")
	}

	params := block.child(paramsTag)
	if params == nil && generatorVersion == "" {
		return nil
	}

	meta := &graph.Metadata{
		GeneratorVersion: generatorVersion,
		Params:           map[string]string{},
	}
	if params != nil {
		for i := range params.Children {
			// entries without a value, such as <unset unset_cli_parameters="..."/>, are not parameters
			if value, ok := params.Children[i].attr("value"); ok {
				meta.Params[params.Children[i].XMLName.Local] = value
			}
		}
	}
	if _, ok := meta.Params[versionParam]; !ok && generatorVersion != "" {
		meta.Params[versionParam] = generatorVersion
	}
	return meta
}
