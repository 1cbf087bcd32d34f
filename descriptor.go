package bagmeta

import (
	"github.com/arloliu/bagmeta/compress"
)

// Descriptor is a snapshot of the dataset properties derived from its
// container and metadata.
type Descriptor struct {
	Version  string `json:"version" yaml:"version"`
	ReadOnly bool   `json:"readOnly" yaml:"readOnly"`

	Rows             uint32  `json:"rows" yaml:"rows"`
	Columns          uint32  `json:"columns" yaml:"columns"`
	RowResolution    float64 `json:"rowResolution" yaml:"rowResolution"`
	ColumnResolution float64 `json:"columnResolution" yaml:"columnResolution"`

	LLCornerX float64 `json:"llCornerX" yaml:"llCornerX"`
	LLCornerY float64 `json:"llCornerY" yaml:"llCornerY"`
	URCornerX float64 `json:"urCornerX" yaml:"urCornerX"`
	URCornerY float64 `json:"urCornerY" yaml:"urCornerY"`

	// HorizontalCRS is the WKT definition, empty unless the type is WKT.
	HorizontalCRS string `json:"horizontalCRS,omitempty" yaml:"horizontalCRS,omitempty"`
	// VerticalCRS is the vertical reference system definition of any type.
	VerticalCRS string `json:"verticalCRS,omitempty" yaml:"verticalCRS,omitempty"`

	XMLLength int                       `json:"xmlLength" yaml:"xmlLength"`
	Storage   compress.CompressionStats `json:"storage" yaml:"storage"`
}

// Descriptor returns a snapshot of the dataset properties. Grid fields are
// zero for a dataset without metadata.
func (ds *Dataset) Descriptor() Descriptor {
	d := Descriptor{
		Version:  ds.version,
		ReadOnly: ds.ReadOnly(),
	}

	m := ds.meta
	if m == nil {
		return d
	}

	sri := m.spatial()
	d.Rows = sri.Rows
	d.Columns = sri.Columns
	d.RowResolution = sri.RowResolution
	d.ColumnResolution = sri.ColumnResolution
	d.LLCornerX = sri.LLCornerX
	d.LLCornerY = sri.LLCornerY
	d.URCornerX = sri.URCornerX
	d.URCornerY = sri.URCornerY
	d.HorizontalCRS, _ = m.HorizontalCRSAsWKT()
	if rec := m.record; rec != nil && rec.VerticalReferenceSystem != nil {
		d.VerticalCRS = rec.VerticalReferenceSystem.Definition
	}
	d.XMLLength = m.xmlLength
	if m.entry != nil {
		d.Storage = m.entry.Stats()
	}

	return d
}
