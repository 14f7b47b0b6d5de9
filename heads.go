package modelanalyzer

import (
	"github.com/knights-analytics/modelanalyzer/graph"
	"github.com/knights-analytics/modelanalyzer/util/safeconv"
)

// headPolicy describes how one architecture family encodes its classes.
type headPolicy struct {
	family string
	types  map[string]bool
	// last picks the last matching node instead of the first one.
	last       bool
	numClasses func(graph.Node) (int, error)
	background func(graph.Node) BackgroundClass
}

// headPolicies are tried in order, the first family with a matching node wins.
var headPolicies = []headPolicy{
	{
		family:     "yolo",
		types:      map[string]bool{"RegionYolo": true},
		numClasses: attributeClasses("classes"),
		background: unknownBackground,
	},
	{
		family:     "ssd",
		types:      map[string]bool{"DetectionOutput": true},
		numClasses: attributeClasses("num_classes"),
		background: detectionOutputBackground,
	},
	{
		family:     "classification",
		types:      map[string]bool{"SoftMax": true, "Softmax": true},
		last:       true,
		numClasses: softmaxClasses,
		background: unknownBackground,
	},
}

// DetectionOutput default for an omitted background_label_id.
const defaultBackgroundLabelID = 0

func attributeClasses(name string) func(graph.Node) (int, error) {
	return func(node graph.Node) (int, error) {
		return intAttribute(node, name)
	}
}

// softmaxClasses reads the class dimension of the softmax output. The axis attribute
// defaults to 1 and may count from the end.
func softmaxClasses(node graph.Node) (int, error) {
	axis := 1
	if _, ok := node.Attribute("axis"); ok {
		var err error
		if axis, err = intAttribute(node, "axis"); err != nil {
			return 0, err
		}
	}

	ports := node.Outputs
	if len(ports) == 0 {
		ports = node.Inputs
	}
	if len(ports) == 0 || len(ports[0].Dims) == 0 {
		return 0, &MissingFieldError{Field: "output shape", Node: node.Name}
	}
	dims := ports[0].Dims
	if axis < 0 {
		axis += len(dims)
	}
	if axis < 0 || axis >= len(dims) {
		return 0, &MissingFieldError{Field: "axis", Node: node.Name}
	}
	// the batch may be dynamic, the class dimension may not
	if dims[axis] <= 0 {
		return 0, &MissingFieldError{Field: "class dimension", Node: node.Name}
	}
	return safeconv.Int64ToInt(dims[axis]), nil
}

func unknownBackground(graph.Node) BackgroundClass {
	return BackgroundClassUnknown
}

// detectionOutputBackground reports a background class when background_label_id
// points at one of the num_classes classes. The label id defaults to 0 when omitted.
func detectionOutputBackground(node graph.Node) BackgroundClass {
	numClasses, err := intAttribute(node, "num_classes")
	if err != nil {
		return BackgroundClassUnknown
	}
	backgroundID := defaultBackgroundLabelID
	if _, ok := node.Attribute("background_label_id"); ok {
		if backgroundID, err = intAttribute(node, "background_label_id"); err != nil {
			return BackgroundClassUnknown
		}
	}
	if backgroundID >= 0 && backgroundID < numClasses {
		return BackgroundClassPresent
	}
	return BackgroundClassAbsent
}
