// Package ir reads OpenVINO Intermediate Representation descriptors.
//
// An IR model is a pair of files: an .xml descriptor holding the network topology and
// a .bin file holding the weights. Only the descriptor is decoded: layers with their
// parameters, port shapes and runtime info, and the metadata block the model optimizer
// writes when it generates the IR.
//
//	network, err := ir.ReadNetwork(ctx, "models/face-detection.xml", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, node := range network.Nodes() {
//	    fmt.Println(node.Name, node.Type)
//	}
package ir
