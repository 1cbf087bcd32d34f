package metadata

import (
	"encoding/xml"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/bagmeta/errs"
)

const testWKT = `PROJCS["WGS 84 / UTM zone 19N",GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]]],UNIT["metre",1]]`

func sampleRecord() *BagMetadata {
	md := New()
	md.FileIdentifier = "b7f8a3e2-5c9d-4d61-9a1e-2f6b7c8d9e01"
	md.DateStamp = "2024-03-18"
	md.Contact = &ResponsibleParty{
		IndividualName:   "J. Hydrographer",
		OrganisationName: "Survey & Charting <Office>",
		Role:             "pointOfContact",
	}

	sri := md.SpatialRepresentationInfo
	sri.Rows = 512
	sri.Columns = 1024
	sri.RowResolution = 0.1
	sri.ColumnResolution = 2.0000000000000004
	sri.TransformationParameterAvailability = true
	sri.LLCornerX = 687910.000000001
	sri.LLCornerY = 4620307.25
	sri.URCornerX = 689957.5
	sri.URCornerY = 4620358.3

	md.HorizontalReferenceSystem = &ReferenceSystemInfo{Type: "WKT", Definition: testWKT}
	md.VerticalReferenceSystem = &ReferenceSystemInfo{Type: "EPSG", Definition: "5703"}

	id := md.IdentificationInfo
	id.Title = "H12345 Approaches"
	id.Abstract = "Multibeam survey, 2 m grid"
	id.WestBoundingLongitude = -70.7
	id.EastBoundingLongitude = -70.67
	id.SouthBoundingLatitude = 41.71
	id.NorthBoundingLatitude = 41.73
	id.VerticalUncertaintyType = "Raw Std Dev"
	id.ResponsibleParties = []ResponsibleParty{
		{IndividualName: "A", Role: "principalInvestigator"},
		{OrganisationName: "NOAA", Role: "publisher"},
	}

	md.DataQualityInfo = &DataQualityInfo{
		ScopeLevel: "dataset",
		Sources: []SourceInfo{
			{Description: "MBES soundings", Responsibility: []ResponsibleParty{{Role: "originator"}}},
		},
		ProcessSteps: []ProcessStep{
			{Description: "gridded", DateTime: "2024-03-18T10:00:00Z", TrackingID: "1"},
			{Description: "reviewed", Processors: []ResponsibleParty{{IndividualName: "B", Role: "processor"}}},
		},
	}
	md.LegalConstraints.UseConstraints = "Not for navigation"
	md.SecurityConstraints.Classification = "unclassified"

	return md
}

func TestNew(t *testing.T) {
	md := New()
	require.True(t, md.IsInitialized())
	require.Equal(t, DefaultLanguage, md.Language)
	require.Equal(t, uint32(DefaultNumberOfDimensions), md.SpatialRepresentationInfo.NumberOfDimensions)
	require.Empty(t, md.HorizontalReferenceSystem.Type)
	require.Zero(t, md.SpatialRepresentationInfo.RowResolution)

	require.False(t, (&BagMetadata{}).IsInitialized())
	require.False(t, (*BagMetadata)(nil).IsInitialized())
}

func TestFree(t *testing.T) {
	md := sampleRecord()
	require.NoError(t, Free(md))
	require.False(t, md.IsInitialized())
	require.ErrorIs(t, Free(md), errs.ErrAlreadyReleased)
	require.ErrorIs(t, Free(nil), errs.ErrNotInitialized)

	Init(md)
	require.Equal(t, New(), md)
}

func TestClone(t *testing.T) {
	md := sampleRecord()
	c := md.Clone()
	require.Equal(t, md, c)

	c.SpatialRepresentationInfo.RowResolution = 99
	c.IdentificationInfo.ResponsibleParties[0].IndividualName = "changed"
	c.DataQualityInfo.ProcessSteps[1].Processors[0].Role = "changed"
	c.HorizontalReferenceSystem.Type = "EPSG"

	require.Equal(t, 0.1, md.SpatialRepresentationInfo.RowResolution)
	require.Equal(t, "A", md.IdentificationInfo.ResponsibleParties[0].IndividualName)
	require.Equal(t, "processor", md.DataQualityInfo.ProcessSteps[1].Processors[0].Role)
	require.Equal(t, "WKT", md.HorizontalReferenceSystem.Type)

	require.Nil(t, (*BagMetadata)(nil).Clone())
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		md   *BagMetadata
	}{
		{"empty", New()},
		{"populated", sampleRecord()},
		{"extreme floats", func() *BagMetadata {
			md := sampleRecord()
			md.SpatialRepresentationInfo.RowResolution = math.SmallestNonzeroFloat64
			md.SpatialRepresentationInfo.ColumnResolution = math.MaxFloat64
			md.SpatialRepresentationInfo.LLCornerX = -1.0 / 3.0
			return md
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Encode(tt.md)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(string(out), xml.Header))

			for _, strict := range []bool{false, true} {
				got, err := Decode(out, strict)
				require.NoError(t, err)
				require.Equal(t, tt.md, got)
			}

			again, err := Encode(tt.md)
			require.NoError(t, err)
			require.Equal(t, out, again)
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	out, err := Encode(sampleRecord())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `<bagMetadata version="1">`)
	assert.Contains(t, s, `<horizontalReferenceSystem type="WKT">`)
	assert.Contains(t, s, `<rowResolution>0.1</rowResolution>`)
	assert.Contains(t, s, `<llCornerY>4.62030725e+06</llCornerY>`)
	assert.Contains(t, s, `Survey &amp; Charting &lt;Office&gt;`)
}

func TestEncodeEscapedText(t *testing.T) {
	md := sampleRecord()
	md.FileIdentifier = "tab\tline\ncr\r <&> \"quoted\" é ✓ 𝄞"
	md.IdentificationInfo.Abstract = "\uE000\uFFFD\U0010FFFF"

	out, err := Encode(md)
	require.NoError(t, err)

	got, err := Decode(out, true)
	require.NoError(t, err)
	require.Equal(t, md.FileIdentifier, got.FileIdentifier)
	require.Equal(t, md.IdentificationInfo.Abstract, got.IdentificationInfo.Abstract)
}

func TestEncodeUnrepresentableString(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(md *BagMetadata)
		field  string
	}{
		{"control and invalid utf8", func(md *BagMetadata) { md.FileIdentifier = "id\x01\xff" }, "FileIdentifier"},
		{"nul", func(md *BagMetadata) { md.Language = "en\x00" }, "Language"},
		{"invalid utf8", func(md *BagMetadata) { md.Contact.IndividualName = "\xc3\x28" }, "Contact.IndividualName"},
		{"noncharacter", func(md *BagMetadata) { md.IdentificationInfo.Title = "\uFFFE" }, "IdentificationInfo.Title"},
		{"nested slice", func(md *BagMetadata) {
			md.DataQualityInfo.ProcessSteps = []ProcessStep{
				{Description: "ok"},
				{Description: "ok", Processors: []ResponsibleParty{{Role: "bell\a"}}},
			}
		}, "DataQualityInfo.ProcessSteps[1].Processors[0].Role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := sampleRecord()
			tt.mutate(md)

			out, err := Encode(md)
			require.Nil(t, out)

			var ee *errs.ExportError
			require.ErrorAs(t, err, &ee)
			require.ErrorIs(t, err, errs.ErrMalformedField)
			require.ErrorContains(t, err, tt.field)
		})
	}
}

func TestEncodeNotInitialized(t *testing.T) {
	_, err := Encode(nil)
	var ee *errs.ExportError
	require.ErrorAs(t, err, &ee)
	require.ErrorIs(t, err, errs.ErrNotInitialized)

	md := New()
	require.NoError(t, Free(md))
	_, err = Encode(md)
	require.ErrorIs(t, err, errs.ErrNotInitialized)
}

func TestDecodeLenient(t *testing.T) {
	t.Run("missing sub-records", func(t *testing.T) {
		md, err := Decode([]byte(`<bagMetadata version="1"><fileIdentifier>abc</fileIdentifier></bagMetadata>`), false)
		require.NoError(t, err)
		require.True(t, md.IsInitialized())
		require.Equal(t, "abc", md.FileIdentifier)
		require.Equal(t, newSpatialRepresentationInfo(), md.SpatialRepresentationInfo)
		require.Equal(t, &ReferenceSystemInfo{}, md.HorizontalReferenceSystem)
	})

	t.Run("malformed and unknown", func(t *testing.T) {
		doc := `<bagMetadata version="1">
  <extension><note>ignored</note></extension>
  <spatialRepresentationInfo>
    <rowResolution>abc</rowResolution>
    <columnResolution>2.5</columnResolution>
    <rows>-3</rows>
    <checkPointAvailability>maybe</checkPointAvailability>
    <vendorField>1</vendorField>
  </spatialRepresentationInfo>
  <horizontalReferenceSystem type="EPSG">32619</horizontalReferenceSystem>
</bagMetadata>`
		md, err := Decode([]byte(doc), false)
		require.NoError(t, err)
		require.Zero(t, md.SpatialRepresentationInfo.RowResolution)
		require.Equal(t, 2.5, md.SpatialRepresentationInfo.ColumnResolution)
		require.Zero(t, md.SpatialRepresentationInfo.Rows)
		require.False(t, md.SpatialRepresentationInfo.CheckPointAvailability)
		require.Equal(t, "EPSG", md.HorizontalReferenceSystem.Type)
		require.Equal(t, "32619", md.HorizontalReferenceSystem.Definition)
	})
}

func TestDecodeStrict(t *testing.T) {
	const complete = `<spatialRepresentationInfo></spatialRepresentationInfo><horizontalReferenceSystem type="WKT">x</horizontalReferenceSystem>`

	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "unknown top-level element",
			doc:     `<bagMetadata>` + complete + `<extra/></bagMetadata>`,
			wantErr: errs.ErrUnknownElement,
		},
		{
			name:    "unknown nested element",
			doc:     `<bagMetadata>` + complete + `<contact><fax>1</fax></contact></bagMetadata>`,
			wantErr: errs.ErrUnknownElement,
		},
		{
			name:    "malformed float",
			doc:     `<bagMetadata><spatialRepresentationInfo><llCornerX>east</llCornerX></spatialRepresentationInfo><horizontalReferenceSystem/></bagMetadata>`,
			wantErr: errs.ErrMalformedField,
		},
		{
			name:    "malformed bool",
			doc:     `<bagMetadata><spatialRepresentationInfo><checkPointAvailability>yes</checkPointAvailability></spatialRepresentationInfo><horizontalReferenceSystem/></bagMetadata>`,
			wantErr: errs.ErrMalformedField,
		},
		{
			name:    "unsupported version",
			doc:     `<bagMetadata version="7">` + complete + `</bagMetadata>`,
			wantErr: errs.ErrMalformedField,
		},
		{
			name:    "missing spatial representation",
			doc:     `<bagMetadata><horizontalReferenceSystem type="WKT">x</horizontalReferenceSystem></bagMetadata>`,
			wantErr: errs.ErrMissingField,
		},
		{
			name:    "missing horizontal reference system",
			doc:     `<bagMetadata><spatialRepresentationInfo/></bagMetadata>`,
			wantErr: errs.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), true)
			require.ErrorIs(t, err, tt.wantErr)

			_, err = Decode([]byte(tt.doc), false)
			require.NoError(t, err)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(nil, false)
	require.ErrorIs(t, err, errs.ErrEmptyDocument)
	_, err = Decode([]byte(" \n\t"), false)
	require.ErrorIs(t, err, errs.ErrEmptyDocument)

	_, err = Decode([]byte(`<other/>`), false)
	require.Error(t, err)
}

func TestImportSyntaxError(t *testing.T) {
	doc := "<bagMetadata version=\"1\">\n  <language>en</lang>\n</bagMetadata>"

	_, err := Import("meta.xml", []byte(doc), false)
	var ie *errs.ImportError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, "meta.xml", ie.Source)
	require.Equal(t, 2, ie.Line)

	var se *xml.SyntaxError
	require.ErrorAs(t, err, &se)
}

func TestImportFile(t *testing.T) {
	out, err := Encode(sampleRecord())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "meta.xml")
	require.NoError(t, os.WriteFile(path, out, 0o644))

	md, size, err := ImportFile(path, true)
	require.NoError(t, err)
	require.Equal(t, int64(len(out)), size)
	require.Equal(t, sampleRecord(), md)

	_, _, err = ImportFile(filepath.Join(t.TempDir(), "missing.xml"), false)
	var ie *errs.ImportError
	require.ErrorAs(t, err, &ie)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	result := Validate(sampleRecord())
	require.True(t, result.Valid, result.ErrorString())
	require.False(t, result.HasErrors())

	result = Validate(New())
	require.False(t, result.Valid)
	require.Contains(t, result.ErrorString(), "rowResolution must be positive")
	require.Contains(t, result.ErrorString(), "horizontalReferenceSystem type is missing")

	inverted := sampleRecord()
	inverted.SpatialRepresentationInfo.LLCornerX, inverted.SpatialRepresentationInfo.URCornerX =
		inverted.SpatialRepresentationInfo.URCornerX, inverted.SpatialRepresentationInfo.LLCornerX
	inverted.HorizontalReferenceSystem.Definition = " "
	result = Validate(inverted)
	require.Len(t, result.Errors, 2)

	released := New()
	require.NoError(t, Free(released))
	result = Validate(released)
	require.Equal(t, []string{"metadata record is not initialized"}, result.Errors)
}

func TestNewFileIdentifier(t *testing.T) {
	id := NewFileIdentifier()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.NotEqual(t, id, NewFileIdentifier())
}
