package metadata

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/arloliu/bagmeta/errs"
)

// DocumentVersion is the value of the version attribute on the root element.
const DocumentVersion = "1"

// bagMetadataXML is the wire form of BagMetadata.
//
// XML Structure:
//
//	<bagMetadata version="1">
//	  <fileIdentifier>...</fileIdentifier>
//	  <contact>...</contact>
//	  <spatialRepresentationInfo>
//	    <rowResolution>2</rowResolution>
//	    <llCornerX>100</llCornerX>
//	    ...
//	  </spatialRepresentationInfo>
//	  <horizontalReferenceSystem type="WKT">PROJCS[...]</horizontalReferenceSystem>
//	  <verticalReferenceSystem type="WKT">VERT_CS[...]</verticalReferenceSystem>
//	  <identificationInfo>...</identificationInfo>
//	  <dataQualityInfo>...</dataQualityInfo>
//	  <legalConstraints>...</legalConstraints>
//	  <securityConstraints>...</securityConstraints>
//	</bagMetadata>
type bagMetadataXML struct {
	XMLName xml.Name `xml:"bagMetadata"`
	Version string   `xml:"version,attr"`

	FileIdentifier          string `xml:"fileIdentifier"`
	Language                string `xml:"language"`
	CharacterSet            string `xml:"characterSet"`
	HierarchyLevel          string `xml:"hierarchyLevel"`
	DateStamp               string `xml:"dateStamp"`
	MetadataStandardName    string `xml:"metadataStandardName"`
	MetadataStandardVersion string `xml:"metadataStandardVersion"`

	Contact                   *partyXML          `xml:"contact"`
	SpatialRepresentationInfo *spatialXML        `xml:"spatialRepresentationInfo"`
	HorizontalReferenceSystem *refSystemXML      `xml:"horizontalReferenceSystem"`
	VerticalReferenceSystem   *refSystemXML      `xml:"verticalReferenceSystem"`
	IdentificationInfo        *identificationXML `xml:"identificationInfo"`
	DataQualityInfo           *dataQualityXML    `xml:"dataQualityInfo"`
	LegalConstraints          *legalXML          `xml:"legalConstraints"`
	SecurityConstraints       *securityXML       `xml:"securityConstraints"`

	Unknown []unknownXML `xml:",any"`
}

type partyXML struct {
	IndividualName   string       `xml:"individualName"`
	OrganisationName string       `xml:"organisationName"`
	PositionName     string       `xml:"positionName"`
	Phone            string       `xml:"phone"`
	Role             string       `xml:"role"`
	Unknown          []unknownXML `xml:",any"`
}

// numeric fields stay strings on the wire so malformed values can be
// tolerated outside strict mode
type spatialXML struct {
	NumberOfDimensions                  string       `xml:"numberOfDimensions"`
	Rows                                string       `xml:"rows"`
	Columns                             string       `xml:"columns"`
	RowResolution                       string       `xml:"rowResolution"`
	ColumnResolution                    string       `xml:"columnResolution"`
	ResolutionUnit                      string       `xml:"resolutionUnit"`
	CellGeometry                        string       `xml:"cellGeometry"`
	TransformationParameterAvailability string       `xml:"transformationParameterAvailability"`
	CheckPointAvailability              string       `xml:"checkPointAvailability"`
	LLCornerX                           string       `xml:"llCornerX"`
	LLCornerY                           string       `xml:"llCornerY"`
	URCornerX                           string       `xml:"urCornerX"`
	URCornerY                           string       `xml:"urCornerY"`
	Unknown                             []unknownXML `xml:",any"`
}

type refSystemXML struct {
	Type       string `xml:"type,attr"`
	Definition string `xml:",chardata"`
}

type identificationXML struct {
	Title                     string       `xml:"title"`
	Date                      string       `xml:"date"`
	DateType                  string       `xml:"dateType"`
	Abstract                  string       `xml:"abstract"`
	Status                    string       `xml:"status"`
	SpatialRepresentationType string       `xml:"spatialRepresentationType"`
	Language                  string       `xml:"language"`
	CharacterSet              string       `xml:"characterSet"`
	TopicCategory             string       `xml:"topicCategory"`
	WestBoundingLongitude     string       `xml:"westBoundingLongitude"`
	EastBoundingLongitude     string       `xml:"eastBoundingLongitude"`
	SouthBoundingLatitude     string       `xml:"southBoundingLatitude"`
	NorthBoundingLatitude     string       `xml:"northBoundingLatitude"`
	VerticalUncertaintyType   string       `xml:"verticalUncertaintyType"`
	DepthCorrectionType       string       `xml:"depthCorrectionType"`
	ResponsibleParties        []partyXML   `xml:"responsibleParties>party"`
	Unknown                   []unknownXML `xml:",any"`
}

type dataQualityXML struct {
	ScopeLevel   string           `xml:"scopeLevel"`
	Sources      []sourceXML      `xml:"lineage>source"`
	ProcessSteps []processStepXML `xml:"lineage>processStep"`
	Unknown      []unknownXML     `xml:",any"`
}

type sourceXML struct {
	Description    string       `xml:"description"`
	Title          string       `xml:"title"`
	Date           string       `xml:"date"`
	DateType       string       `xml:"dateType"`
	Responsibility []partyXML   `xml:"responsibility>party"`
	Unknown        []unknownXML `xml:",any"`
}

type processStepXML struct {
	Description string       `xml:"description"`
	DateTime    string       `xml:"dateTime"`
	TrackingID  string       `xml:"trackingId"`
	Processors  []partyXML   `xml:"processors>party"`
	Unknown     []unknownXML `xml:",any"`
}

type legalXML struct {
	UseConstraints   string       `xml:"useConstraints"`
	OtherConstraints string       `xml:"otherConstraints"`
	Unknown          []unknownXML `xml:",any"`
}

type securityXML struct {
	Classification        string       `xml:"classification"`
	DistributionStatement string       `xml:"distributionStatement"`
	Unknown               []unknownXML `xml:",any"`
}

type unknownXML struct {
	XMLName xml.Name
}

// Decode parses an XML metadata document into a new record.
//
// In lenient mode (strict == false) unknown elements are ignored, malformed
// numbers and booleans decode as zero values, and missing sub-records are
// initialized to their defaults. In strict mode each of those conditions is an
// error matching errs.ErrUnknownElement, errs.ErrMalformedField or
// errs.ErrMissingField. Syntax errors are returned as *xml.SyntaxError.
func Decode(data []byte, strict bool) (*BagMetadata, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errs.ErrEmptyDocument
	}

	var doc bagMetadataXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	d := &decoder{strict: strict}
	md := d.document(&doc)
	if d.err != nil {
		return nil, d.err
	}

	return md, nil
}

// Import decodes data and reports failures as *errs.ImportError naming
// source, with the line number of syntax errors.
func Import(source string, data []byte, strict bool) (*BagMetadata, error) {
	md, err := Decode(data, strict)
	if err != nil {
		return nil, newImportError(source, err)
	}

	return md, nil
}

// ImportFile reads and decodes the XML document at path. It returns the
// record and the size of the file in bytes.
func ImportFile(path string, strict bool) (*BagMetadata, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &errs.ImportError{Source: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, &errs.ImportError{Source: path, Err: err}
	}

	md, err := Import(path, data, strict)
	if err != nil {
		return nil, 0, err
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, &errs.ImportError{Source: path, Err: err}
	}

	return md, size, nil
}

func newImportError(source string, err error) *errs.ImportError {
	ie := &errs.ImportError{Source: source, Err: err}

	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		ie.Line = syntaxErr.Line
	}

	return ie
}

// Encode renders md as an indented XML document with an XML declaration.
// Numbers use the shortest representation that decodes to the same value.
// Strings that XML 1.0 cannot carry, such as invalid UTF-8 or control
// characters other than tab, newline and carriage return, fail with
// errs.ErrMalformedField instead of being replaced.
// Failures are returned as *errs.ExportError.
func Encode(md *BagMetadata) ([]byte, error) {
	if !md.IsInitialized() {
		return nil, &errs.ExportError{Err: errs.ErrNotInitialized}
	}
	if err := checkEncodable(reflect.ValueOf(md).Elem(), ""); err != nil {
		return nil, &errs.ExportError{Err: err}
	}

	out, err := xml.MarshalIndent(encodeDocument(md), "", "  ")
	if err != nil {
		return nil, &errs.ExportError{Err: err}
	}

	buf := make([]byte, 0, len(xml.Header)+len(out)+1)
	buf = append(buf, xml.Header...)
	buf = append(buf, out...)
	buf = append(buf, '\n')

	return buf, nil
}

// checkEncodable returns an error naming the first string field of v that
// is not valid XML character data. Field paths use the record field names.
func checkEncodable(v reflect.Value, path string) error {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}

		return checkEncodable(v.Elem(), path)
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if path != "" {
				name = path + "." + name
			}
			if err := checkEncodable(v.Field(i), name); err != nil {
				return err
			}
		}
	case reflect.Slice:
		for i := range v.Len() {
			if err := checkEncodable(v.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case reflect.String:
		if !isCharData(v.String()) {
			return fmt.Errorf("%w: %s is not representable in XML", errs.ErrMalformedField, path)
		}
	default:
	}

	return nil
}

func isCharData(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !isInCharacterRange(r) {
			return false
		}
	}

	return true
}

// isInCharacterRange reports whether r matches the XML 1.0 Char production.
func isInCharacterRange(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// decoder converts the wire form into a record, keeping the first error.
type decoder struct {
	strict bool
	err    error
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) unknown(path string, els []unknownXML) {
	if d.strict && len(els) > 0 {
		d.fail(fmt.Errorf("%w: %s/%s", errs.ErrUnknownElement, path, els[0].XMLName.Local))
	}
}

func (d *decoder) parseFloat(field, s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if d.strict {
			d.fail(fmt.Errorf("%w: %s=%q", errs.ErrMalformedField, field, s))
		}
		return 0
	}

	return v
}

func (d *decoder) parseUint32(field, s string) uint32 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		if d.strict {
			d.fail(fmt.Errorf("%w: %s=%q", errs.ErrMalformedField, field, s))
		}
		return 0
	}

	return uint32(v)
}

func (d *decoder) parseBool(field, s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		if d.strict {
			d.fail(fmt.Errorf("%w: %s=%q", errs.ErrMalformedField, field, s))
		}
		return false
	}

	return v
}

func (d *decoder) document(doc *bagMetadataXML) *BagMetadata {
	if d.strict && doc.Version != "" && doc.Version != DocumentVersion {
		d.fail(fmt.Errorf("%w: version=%q", errs.ErrMalformedField, doc.Version))
	}
	d.unknown("bagMetadata", doc.Unknown)

	md := New()
	md.FileIdentifier = doc.FileIdentifier
	md.Language = doc.Language
	md.CharacterSet = doc.CharacterSet
	md.HierarchyLevel = doc.HierarchyLevel
	md.DateStamp = doc.DateStamp
	md.MetadataStandardName = doc.MetadataStandardName
	md.MetadataStandardVersion = doc.MetadataStandardVersion

	if doc.Contact != nil {
		p := d.party("contact", doc.Contact)
		md.Contact = &p
	}

	if doc.SpatialRepresentationInfo != nil {
		md.SpatialRepresentationInfo = d.spatial(doc.SpatialRepresentationInfo)
	} else if d.strict {
		d.fail(fmt.Errorf("%w: spatialRepresentationInfo", errs.ErrMissingField))
	}

	if doc.HorizontalReferenceSystem != nil {
		md.HorizontalReferenceSystem = refSystem(doc.HorizontalReferenceSystem)
	} else if d.strict {
		d.fail(fmt.Errorf("%w: horizontalReferenceSystem", errs.ErrMissingField))
	}

	if doc.VerticalReferenceSystem != nil {
		md.VerticalReferenceSystem = refSystem(doc.VerticalReferenceSystem)
	}
	if doc.IdentificationInfo != nil {
		md.IdentificationInfo = d.identification(doc.IdentificationInfo)
	}
	if doc.DataQualityInfo != nil {
		md.DataQualityInfo = d.dataQuality(doc.DataQualityInfo)
	}
	if doc.LegalConstraints != nil {
		d.unknown("legalConstraints", doc.LegalConstraints.Unknown)
		md.LegalConstraints = &LegalConstraints{
			UseConstraints:   doc.LegalConstraints.UseConstraints,
			OtherConstraints: doc.LegalConstraints.OtherConstraints,
		}
	}
	if doc.SecurityConstraints != nil {
		d.unknown("securityConstraints", doc.SecurityConstraints.Unknown)
		md.SecurityConstraints = &SecurityConstraints{
			Classification:        doc.SecurityConstraints.Classification,
			DistributionStatement: doc.SecurityConstraints.DistributionStatement,
		}
	}

	return md
}

func (d *decoder) party(path string, p *partyXML) ResponsibleParty {
	d.unknown(path, p.Unknown)

	return ResponsibleParty{
		IndividualName:   p.IndividualName,
		OrganisationName: p.OrganisationName,
		PositionName:     p.PositionName,
		Phone:            p.Phone,
		Role:             p.Role,
	}
}

func (d *decoder) parties(path string, ps []partyXML) []ResponsibleParty {
	if len(ps) == 0 {
		return nil
	}

	out := make([]ResponsibleParty, 0, len(ps))
	for i := range ps {
		out = append(out, d.party(path, &ps[i]))
	}

	return out
}

func (d *decoder) spatial(s *spatialXML) *SpatialRepresentationInfo {
	d.unknown("spatialRepresentationInfo", s.Unknown)

	return &SpatialRepresentationInfo{
		NumberOfDimensions: d.parseUint32("numberOfDimensions", s.NumberOfDimensions),
		Rows:               d.parseUint32("rows", s.Rows),
		Columns:            d.parseUint32("columns", s.Columns),
		RowResolution:      d.parseFloat("rowResolution", s.RowResolution),
		ColumnResolution:   d.parseFloat("columnResolution", s.ColumnResolution),
		ResolutionUnit:     s.ResolutionUnit,
		CellGeometry:       s.CellGeometry,

		TransformationParameterAvailability: d.parseBool("transformationParameterAvailability", s.TransformationParameterAvailability),
		CheckPointAvailability:              d.parseBool("checkPointAvailability", s.CheckPointAvailability),

		LLCornerX: d.parseFloat("llCornerX", s.LLCornerX),
		LLCornerY: d.parseFloat("llCornerY", s.LLCornerY),
		URCornerX: d.parseFloat("urCornerX", s.URCornerX),
		URCornerY: d.parseFloat("urCornerY", s.URCornerY),
	}
}

func refSystem(r *refSystemXML) *ReferenceSystemInfo {
	return &ReferenceSystemInfo{Type: r.Type, Definition: r.Definition}
}

func (d *decoder) identification(id *identificationXML) *DataIdentificationInfo {
	d.unknown("identificationInfo", id.Unknown)

	return &DataIdentificationInfo{
		Title:                     id.Title,
		Date:                      id.Date,
		DateType:                  id.DateType,
		Abstract:                  id.Abstract,
		Status:                    id.Status,
		SpatialRepresentationType: id.SpatialRepresentationType,
		Language:                  id.Language,
		CharacterSet:              id.CharacterSet,
		TopicCategory:             id.TopicCategory,
		WestBoundingLongitude:     d.parseFloat("westBoundingLongitude", id.WestBoundingLongitude),
		EastBoundingLongitude:     d.parseFloat("eastBoundingLongitude", id.EastBoundingLongitude),
		SouthBoundingLatitude:     d.parseFloat("southBoundingLatitude", id.SouthBoundingLatitude),
		NorthBoundingLatitude:     d.parseFloat("northBoundingLatitude", id.NorthBoundingLatitude),
		VerticalUncertaintyType:   id.VerticalUncertaintyType,
		DepthCorrectionType:       id.DepthCorrectionType,
		ResponsibleParties:        d.parties("identificationInfo/responsibleParties/party", id.ResponsibleParties),
	}
}

func (d *decoder) dataQuality(dq *dataQualityXML) *DataQualityInfo {
	d.unknown("dataQualityInfo", dq.Unknown)

	out := &DataQualityInfo{ScopeLevel: dq.ScopeLevel}
	for i := range dq.Sources {
		s := &dq.Sources[i]
		d.unknown("dataQualityInfo/lineage/source", s.Unknown)
		out.Sources = append(out.Sources, SourceInfo{
			Description:    s.Description,
			Title:          s.Title,
			Date:           s.Date,
			DateType:       s.DateType,
			Responsibility: d.parties("dataQualityInfo/lineage/source/responsibility/party", s.Responsibility),
		})
	}
	for i := range dq.ProcessSteps {
		p := &dq.ProcessSteps[i]
		d.unknown("dataQualityInfo/lineage/processStep", p.Unknown)
		out.ProcessSteps = append(out.ProcessSteps, ProcessStep{
			Description: p.Description,
			DateTime:    p.DateTime,
			TrackingID:  p.TrackingID,
			Processors:  d.parties("dataQualityInfo/lineage/processStep/processors/party", p.Processors),
		})
	}

	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func encodeParty(p ResponsibleParty) partyXML {
	return partyXML{
		IndividualName:   p.IndividualName,
		OrganisationName: p.OrganisationName,
		PositionName:     p.PositionName,
		Phone:            p.Phone,
		Role:             p.Role,
	}
}

func encodeParties(ps []ResponsibleParty) []partyXML {
	if len(ps) == 0 {
		return nil
	}

	out := make([]partyXML, 0, len(ps))
	for _, p := range ps {
		out = append(out, encodeParty(p))
	}

	return out
}

func encodeDocument(md *BagMetadata) *bagMetadataXML {
	contact := encodeParty(*md.Contact)
	sri := md.SpatialRepresentationInfo
	id := md.IdentificationInfo

	doc := &bagMetadataXML{
		Version:                 DocumentVersion,
		FileIdentifier:          md.FileIdentifier,
		Language:                md.Language,
		CharacterSet:            md.CharacterSet,
		HierarchyLevel:          md.HierarchyLevel,
		DateStamp:               md.DateStamp,
		MetadataStandardName:    md.MetadataStandardName,
		MetadataStandardVersion: md.MetadataStandardVersion,

		Contact: &contact,
		SpatialRepresentationInfo: &spatialXML{
			NumberOfDimensions:                  strconv.FormatUint(uint64(sri.NumberOfDimensions), 10),
			Rows:                                strconv.FormatUint(uint64(sri.Rows), 10),
			Columns:                             strconv.FormatUint(uint64(sri.Columns), 10),
			RowResolution:                       formatFloat(sri.RowResolution),
			ColumnResolution:                    formatFloat(sri.ColumnResolution),
			ResolutionUnit:                      sri.ResolutionUnit,
			CellGeometry:                        sri.CellGeometry,
			TransformationParameterAvailability: strconv.FormatBool(sri.TransformationParameterAvailability),
			CheckPointAvailability:              strconv.FormatBool(sri.CheckPointAvailability),
			LLCornerX:                           formatFloat(sri.LLCornerX),
			LLCornerY:                           formatFloat(sri.LLCornerY),
			URCornerX:                           formatFloat(sri.URCornerX),
			URCornerY:                           formatFloat(sri.URCornerY),
		},
		HorizontalReferenceSystem: &refSystemXML{
			Type:       md.HorizontalReferenceSystem.Type,
			Definition: md.HorizontalReferenceSystem.Definition,
		},
		VerticalReferenceSystem: &refSystemXML{
			Type:       md.VerticalReferenceSystem.Type,
			Definition: md.VerticalReferenceSystem.Definition,
		},
		IdentificationInfo: &identificationXML{
			Title:                     id.Title,
			Date:                      id.Date,
			DateType:                  id.DateType,
			Abstract:                  id.Abstract,
			Status:                    id.Status,
			SpatialRepresentationType: id.SpatialRepresentationType,
			Language:                  id.Language,
			CharacterSet:              id.CharacterSet,
			TopicCategory:             id.TopicCategory,
			WestBoundingLongitude:     formatFloat(id.WestBoundingLongitude),
			EastBoundingLongitude:     formatFloat(id.EastBoundingLongitude),
			SouthBoundingLatitude:     formatFloat(id.SouthBoundingLatitude),
			NorthBoundingLatitude:     formatFloat(id.NorthBoundingLatitude),
			VerticalUncertaintyType:   id.VerticalUncertaintyType,
			DepthCorrectionType:       id.DepthCorrectionType,
			ResponsibleParties:        encodeParties(id.ResponsibleParties),
		},
		LegalConstraints: &legalXML{
			UseConstraints:   md.LegalConstraints.UseConstraints,
			OtherConstraints: md.LegalConstraints.OtherConstraints,
		},
		SecurityConstraints: &securityXML{
			Classification:        md.SecurityConstraints.Classification,
			DistributionStatement: md.SecurityConstraints.DistributionStatement,
		},
	}

	dq := &dataQualityXML{ScopeLevel: md.DataQualityInfo.ScopeLevel}
	for _, s := range md.DataQualityInfo.Sources {
		dq.Sources = append(dq.Sources, sourceXML{
			Description:    s.Description,
			Title:          s.Title,
			Date:           s.Date,
			DateType:       s.DateType,
			Responsibility: encodeParties(s.Responsibility),
		})
	}
	for _, p := range md.DataQualityInfo.ProcessSteps {
		dq.ProcessSteps = append(dq.ProcessSteps, processStepXML{
			Description: p.Description,
			DateTime:    p.DateTime,
			TrackingID:  p.TrackingID,
			Processors:  encodeParties(p.Processors),
		})
	}
	doc.DataQualityInfo = dq

	return doc
}
