package metadata

import (
	"slices"

	"github.com/google/uuid"

	"github.com/arloliu/bagmeta/errs"
)

// Defaults applied by Init.
const (
	DefaultLanguage                = "en"
	DefaultCharacterSet            = "utf8"
	DefaultHierarchyLevel          = "dataset"
	DefaultMetadataStandardName    = "ISO 19115"
	DefaultMetadataStandardVersion = "2003/Cor.1:2006"
	DefaultResolutionUnit          = "Metre"
	DefaultCellGeometry            = "point"
	DefaultNumberOfDimensions      = 2
)

// BagMetadata is the structured form of the XML metadata document.
//
// A record is either initialized, with every sub-record pointer non-nil, or
// released by Free. The zero value is not initialized; use New.
type BagMetadata struct {
	FileIdentifier          string
	Language                string
	CharacterSet            string
	HierarchyLevel          string
	DateStamp               string
	MetadataStandardName    string
	MetadataStandardVersion string

	Contact                   *ResponsibleParty
	SpatialRepresentationInfo *SpatialRepresentationInfo
	HorizontalReferenceSystem *ReferenceSystemInfo
	VerticalReferenceSystem   *ReferenceSystemInfo
	IdentificationInfo        *DataIdentificationInfo
	DataQualityInfo           *DataQualityInfo
	LegalConstraints          *LegalConstraints
	SecurityConstraints       *SecurityConstraints
}

// ResponsibleParty identifies a person or organisation and its role.
type ResponsibleParty struct {
	IndividualName   string
	OrganisationName string
	PositionName     string
	Phone            string
	Role             string
}

// SpatialRepresentationInfo describes the grid: its size, spacing and the
// projected coordinates of the lower-left and upper-right nodes.
type SpatialRepresentationInfo struct {
	NumberOfDimensions uint32
	Rows               uint32
	Columns            uint32
	RowResolution      float64
	ColumnResolution   float64
	ResolutionUnit     string
	CellGeometry       string

	TransformationParameterAvailability bool
	CheckPointAvailability              bool

	LLCornerX float64
	LLCornerY float64
	URCornerX float64
	URCornerY float64
}

// ReferenceSystemInfo holds a coordinate reference system definition.
// Type is "WKT" or "EPSG"; Definition is the WKT text or the EPSG code.
type ReferenceSystemInfo struct {
	Type       string
	Definition string
}

// DataIdentificationInfo identifies the survey the grid was produced from.
type DataIdentificationInfo struct {
	Title                     string
	Date                      string
	DateType                  string
	Abstract                  string
	Status                    string
	SpatialRepresentationType string
	Language                  string
	CharacterSet              string
	TopicCategory             string

	WestBoundingLongitude float64
	EastBoundingLongitude float64
	SouthBoundingLatitude float64
	NorthBoundingLatitude float64

	VerticalUncertaintyType string
	DepthCorrectionType     string

	ResponsibleParties []ResponsibleParty
}

// DataQualityInfo records the lineage of the grid.
type DataQualityInfo struct {
	ScopeLevel   string
	Sources      []SourceInfo
	ProcessSteps []ProcessStep
}

// SourceInfo is one lineage source.
type SourceInfo struct {
	Description    string
	Title          string
	Date           string
	DateType       string
	Responsibility []ResponsibleParty
}

// ProcessStep is one lineage processing step.
type ProcessStep struct {
	Description string
	DateTime    string
	TrackingID  string
	Processors  []ResponsibleParty
}

// LegalConstraints restricts the use of the data.
type LegalConstraints struct {
	UseConstraints   string
	OtherConstraints string
}

// SecurityConstraints holds the classification of the data.
type SecurityConstraints struct {
	Classification        string
	DistributionStatement string
}

// New returns an initialized record.
func New() *BagMetadata {
	md := &BagMetadata{}
	Init(md)

	return md
}

// Init resets md to the initialized empty state, discarding its contents.
func Init(md *BagMetadata) {
	*md = BagMetadata{
		Language:                DefaultLanguage,
		CharacterSet:            DefaultCharacterSet,
		HierarchyLevel:          DefaultHierarchyLevel,
		MetadataStandardName:    DefaultMetadataStandardName,
		MetadataStandardVersion: DefaultMetadataStandardVersion,

		Contact:                   &ResponsibleParty{},
		SpatialRepresentationInfo: newSpatialRepresentationInfo(),
		HorizontalReferenceSystem: &ReferenceSystemInfo{},
		VerticalReferenceSystem:   &ReferenceSystemInfo{},
		IdentificationInfo:        newDataIdentificationInfo(),
		DataQualityInfo:           &DataQualityInfo{},
		LegalConstraints:          &LegalConstraints{},
		SecurityConstraints:       &SecurityConstraints{},
	}
}

func newSpatialRepresentationInfo() *SpatialRepresentationInfo {
	return &SpatialRepresentationInfo{
		NumberOfDimensions: DefaultNumberOfDimensions,
		ResolutionUnit:     DefaultResolutionUnit,
		CellGeometry:       DefaultCellGeometry,
	}
}

func newDataIdentificationInfo() *DataIdentificationInfo {
	return &DataIdentificationInfo{
		Language:     DefaultLanguage,
		CharacterSet: DefaultCharacterSet,
	}
}

// Free releases md. Freeing a released or never initialized record returns
// errs.ErrAlreadyReleased.
func Free(md *BagMetadata) error {
	if md == nil {
		return errs.ErrNotInitialized
	}
	if !md.IsInitialized() {
		return errs.ErrAlreadyReleased
	}
	*md = BagMetadata{}

	return nil
}

// IsInitialized reports whether every sub-record is present.
func (md *BagMetadata) IsInitialized() bool {
	return md != nil &&
		md.Contact != nil &&
		md.SpatialRepresentationInfo != nil &&
		md.HorizontalReferenceSystem != nil &&
		md.VerticalReferenceSystem != nil &&
		md.IdentificationInfo != nil &&
		md.DataQualityInfo != nil &&
		md.LegalConstraints != nil &&
		md.SecurityConstraints != nil
}

// Clone returns a deep copy of md. Nil sub-records stay nil.
func (md *BagMetadata) Clone() *BagMetadata {
	if md == nil {
		return nil
	}

	c := *md
	c.Contact = clonePtr(md.Contact)
	c.SpatialRepresentationInfo = clonePtr(md.SpatialRepresentationInfo)
	c.HorizontalReferenceSystem = clonePtr(md.HorizontalReferenceSystem)
	c.VerticalReferenceSystem = clonePtr(md.VerticalReferenceSystem)
	c.LegalConstraints = clonePtr(md.LegalConstraints)
	c.SecurityConstraints = clonePtr(md.SecurityConstraints)

	if md.IdentificationInfo != nil {
		id := *md.IdentificationInfo
		id.ResponsibleParties = slices.Clone(md.IdentificationInfo.ResponsibleParties)
		c.IdentificationInfo = &id
	}

	if md.DataQualityInfo != nil {
		dq := *md.DataQualityInfo
		dq.Sources = nil
		for _, s := range md.DataQualityInfo.Sources {
			s.Responsibility = slices.Clone(s.Responsibility)
			dq.Sources = append(dq.Sources, s)
		}
		dq.ProcessSteps = nil
		for _, p := range md.DataQualityInfo.ProcessSteps {
			p.Processors = slices.Clone(p.Processors)
			dq.ProcessSteps = append(dq.ProcessSteps, p)
		}
		c.DataQualityInfo = &dq
	}

	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p

	return &v
}

// NewFileIdentifier returns a random identifier suitable for FileIdentifier.
func NewFileIdentifier() string {
	return uuid.NewString()
}
