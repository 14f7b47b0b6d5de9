package modelanalyzer

// Report is a serialisable summary of every query on a network.
type Report struct {
	Name            string             `json:"name"`
	Descriptor      string             `json:"descriptor"`
	Format          string             `json:"format"`
	IRVersion       int64              `json:"ir_version,omitempty"`
	Obsolete        bool               `json:"obsolete"`
	Int8            bool               `json:"int8"`
	Winograd        bool               `json:"winograd"`
	Architecture    string             `json:"architecture,omitempty"`
	NumClasses      int                `json:"num_classes,omitempty"`
	BackgroundClass string             `json:"background_class"`
	Framework       string             `json:"framework,omitempty"`
	DataType        string             `json:"data_type,omitempty"`
	InputShapes     map[string][]int64 `json:"input_shapes,omitempty"`
	InputElements   map[string]int     `json:"input_elements,omitempty"`
	LayerTypes      map[string]int     `json:"layer_types"`
	MOParams        map[string]string  `json:"mo_params,omitempty"`
	// Errors lists the queries that failed, their fields are left empty.
	Errors []string `json:"errors,omitempty"`
}

// Report runs all queries. A failing query does not abort the report.
func (m *NetworkMetaData) Report() *Report {
	report := &Report{
		Name:            m.Name(),
		Descriptor:      m.DescriptorPath(),
		Format:          string(m.Format()),
		Obsolete:        m.IsObsolete(),
		Int8:            m.IsInt8(),
		Winograd:        m.IsWinograd(),
		Architecture:    m.Architecture(),
		BackgroundClass: m.HasBackgroundClass().String(),
		InputShapes:     m.InputShapes(),
		InputElements:   m.InputElements(),
		LayerTypes:      m.LayerTypeCounts(),
	}

	var err error
	if report.IRVersion, err = m.IRVersion(); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}
	if report.NumClasses, err = m.NumClasses(); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}
	if report.MOParams, err = m.MOParams(); err != nil {
		report.Errors = append(report.Errors, err.Error())
	} else {
		report.Framework = report.MOParams["framework"]
		report.DataType = report.MOParams["data_type"]
	}
	return report
}
