package modelanalyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/advancedclimatesystems/gonnx/onnx"
	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/proto"

	"github.com/knights-analytics/modelanalyzer/graph"
	"github.com/knights-analytics/modelanalyzer/onnxgraph"
)

func writeONNXModel(t *testing.T) string {
	t.Helper()
	valueInfo := func(name string, dims ...int64) *onnx.ValueInfoProto {
		shape := &onnx.TensorShapeProto{}
		for _, d := range dims {
			shape.Dim = append(shape.Dim, &onnx.TensorShapeProto_Dimension{
				Value: &onnx.TensorShapeProto_Dimension_DimValue{DimValue: d},
			})
		}
		return &onnx.ValueInfoProto{
			Name: name,
			Type: &onnx.TypeProto{
				Value: &onnx.TypeProto_TensorType{
					TensorType: &onnx.TypeProto_Tensor{ElemType: int32(onnx.TensorProto_FLOAT), Shape: shape},
				},
			},
		}
	}
	model := &onnx.ModelProto{
		IrVersion:     7,
		ProducerName:  "tf2onnx",
		MetadataProps: []*onnx.StringStringEntryProto{{Key: "framework", Value: "tf"}},
		Graph: &onnx.GraphProto{
			Name:  "mnist",
			Input: []*onnx.ValueInfoProto{valueInfo("image", 1, 1, 28, 28)},
			Node: []*onnx.NodeProto{
				{Name: "flatten", OpType: "Flatten", Input: []string{"image"}, Output: []string{"flat"}},
				{
					Name:      "prob",
					OpType:    "Softmax",
					Input:     []string{"flat"},
					Output:    []string{"scores"},
					Attribute: []*onnx.AttributeProto{{Name: "axis", Type: onnx.AttributeProto_INT, I: 1}},
				},
			},
			Output: []*onnx.ValueInfoProto{valueInfo("scores", 1, 10)},
		},
	}
	data, err := proto.Marshal(model)
	checkT(t, err)
	path := filepath.Join(t.TempDir(), "mnist.onnx")
	checkT(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestONNXSoftmaxDefaultAxis(t *testing.T) {
	dims := func(values ...int64) *onnx.TypeProto {
		shape := &onnx.TensorShapeProto{}
		for _, d := range values {
			shape.Dim = append(shape.Dim, &onnx.TensorShapeProto_Dimension{
				Value: &onnx.TensorShapeProto_Dimension_DimValue{DimValue: d},
			})
		}
		return &onnx.TypeProto{Value: &onnx.TypeProto_TensorType{
			TensorType: &onnx.TypeProto_Tensor{ElemType: int32(onnx.TensorProto_FLOAT), Shape: shape},
		}}
	}
	model := &onnx.ModelProto{
		IrVersion:   8,
		OpsetImport: []*onnx.OperatorSetIdProto{{Domain: "", Version: 13}},
		Graph: &onnx.GraphProto{
			Name:  "segmenter",
			Input: []*onnx.ValueInfoProto{{Name: "image", Type: dims(1, 3, 4, 4)}},
			Node: []*onnx.NodeProto{
				{Name: "prob", OpType: "Softmax", Input: []string{"image"}, Output: []string{"scores"}},
			},
			Output: []*onnx.ValueInfoProto{{Name: "scores", Type: dims(1, 4, 4, 7)}},
		},
	}
	network, err := onnxgraph.FromProto(model)
	checkT(t, err)

	// opset 13 softmax normalises over the last axis
	classes, err := NewNetworkMetaData(network, "segmenter.onnx").NumClasses()
	checkT(t, err)
	assert.Equal(t, 7, classes)

	model.OpsetImport[0].Version = 11
	network, err = onnxgraph.FromProto(model)
	checkT(t, err)
	classes, err = NewNetworkMetaData(network, "segmenter.onnx").NumClasses()
	checkT(t, err)
	assert.Equal(t, 4, classes)
}

func TestLoadONNX(t *testing.T) {
	nmd, err := Load(context.Background(), writeONNXModel(t))
	checkT(t, err)

	assert.Equal(t, "mnist", nmd.Name())
	version, err := nmd.IRVersion()
	checkT(t, err)
	assert.Equal(t, int64(7), version)
	assert.Equal(t, graph.FormatONNX, nmd.Format())
	// an ONNX ir_version is not an OpenVINO IR version
	assert.False(t, nmd.IsObsolete())

	classes, err := nmd.NumClasses()
	checkT(t, err)
	assert.Equal(t, 10, classes)
	assert.Equal(t, "classification", nmd.Architecture())
	assert.True(t, nmd.HasLayerOfType("Flatten"))
	assert.Equal(t, map[string]int{"image": 784}, nmd.InputElements())

	framework, err := nmd.Framework()
	checkT(t, err)
	assert.Equal(t, "tf", framework)
}
