// Package modelanalyzer answers metadata queries about neural network descriptors:
// layer types, IR version, model optimizer parameters, class counts and more.
//
// OpenVINO IR (.xml + .bin) and ONNX (.onnx) descriptors are supported, local or on S3:
//
//	nmd, err := modelanalyzer.Load(ctx, "models/yolo-v2-ava-0001.xml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	classes, err := nmd.NumClasses()
package modelanalyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/modelanalyzer/graph"
	"github.com/knights-analytics/modelanalyzer/ir"
	"github.com/knights-analytics/modelanalyzer/onnxgraph"
	util "github.com/knights-analytics/modelanalyzer/utils"
)

// Load reads the descriptor at descriptorPath and wraps it in a NetworkMetaData.
// The reader is chosen from the extension: .xml for OpenVINO IR, .onnx for ONNX.
func Load(ctx context.Context, descriptorPath string, opts ...LoadOption) (*NetworkMetaData, error) {
	options := &loadOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var network graph.Graph
	var err error

	switch strings.ToLower(filepath.Ext(descriptorPath)) {
	case ".xml":
		weightsPath := options.weightsPath
		if weightsPath == "" && options.strictWeights {
			weightsPath = util.ReplaceExt(descriptorPath, ".bin")
		}
		network, err = ir.ReadNetwork(ctx, descriptorPath, weightsPath)
	case ".onnx":
		network, err = onnxgraph.ReadModel(ctx, descriptorPath)
	default:
		return nil, fmt.Errorf("unsupported descriptor %s: expected an .xml or .onnx file", descriptorPath)
	}
	if err != nil {
		return nil, err
	}
	return NewNetworkMetaData(network, descriptorPath), nil
}
