package metadata

import (
	"fmt"
	"math"
	"strings"
)

// ValidationResult contains the outcome of Validate.
// If Valid is false, Errors contains human-readable messages.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// AddError appends an error message and marks the result invalid.
func (v *ValidationResult) AddError(format string, args ...any) {
	v.Valid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// HasErrors returns true if the result contains errors.
func (v *ValidationResult) HasErrors() bool {
	return len(v.Errors) > 0
}

// ErrorString returns all errors joined with semicolons.
func (v *ValidationResult) ErrorString() string {
	return strings.Join(v.Errors, "; ")
}

// Validate checks the semantic consistency of a decoded record: grid size
// and spacing, corner ordering, geographic bounds and reference systems.
// Decoding succeeds on records that fail these checks.
func Validate(md *BagMetadata) ValidationResult {
	result := ValidationResult{Valid: true}

	if !md.IsInitialized() {
		result.AddError("metadata record is not initialized")
		return result
	}

	sri := md.SpatialRepresentationInfo
	if sri.Rows == 0 || sri.Columns == 0 {
		result.AddError("grid dimensions must be positive (rows=%d, columns=%d)", sri.Rows, sri.Columns)
	}
	if !(sri.RowResolution > 0) {
		result.AddError("rowResolution must be positive, got %v", sri.RowResolution)
	}
	if !(sri.ColumnResolution > 0) {
		result.AddError("columnResolution must be positive, got %v", sri.ColumnResolution)
	}
	for name, v := range map[string]float64{
		"llCornerX": sri.LLCornerX, "llCornerY": sri.LLCornerY,
		"urCornerX": sri.URCornerX, "urCornerY": sri.URCornerY,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			result.AddError("%s must be finite, got %v", name, v)
		}
	}
	if sri.LLCornerX > sri.URCornerX {
		result.AddError("llCornerX (%v) is east of urCornerX (%v)", sri.LLCornerX, sri.URCornerX)
	}
	if sri.LLCornerY > sri.URCornerY {
		result.AddError("llCornerY (%v) is north of urCornerY (%v)", sri.LLCornerY, sri.URCornerY)
	}

	validateReferenceSystem(&result, "horizontalReferenceSystem", md.HorizontalReferenceSystem)
	if md.VerticalReferenceSystem.Type != "" || md.VerticalReferenceSystem.Definition != "" {
		validateReferenceSystem(&result, "verticalReferenceSystem", md.VerticalReferenceSystem)
	}

	id := md.IdentificationInfo
	if id.WestBoundingLongitude < -180 || id.EastBoundingLongitude > 180 {
		result.AddError("bounding longitudes must lie within [-180, 180]")
	}
	if id.SouthBoundingLatitude < -90 || id.NorthBoundingLatitude > 90 {
		result.AddError("bounding latitudes must lie within [-90, 90]")
	}
	if id.SouthBoundingLatitude > id.NorthBoundingLatitude {
		result.AddError("southBoundingLatitude (%v) is north of northBoundingLatitude (%v)",
			id.SouthBoundingLatitude, id.NorthBoundingLatitude)
	}

	return result
}

func validateReferenceSystem(result *ValidationResult, name string, rs *ReferenceSystemInfo) {
	switch rs.Type {
	case "WKT", "EPSG":
	case "":
		result.AddError("%s type is missing", name)
		return
	default:
		result.AddError("%s type %q is not WKT or EPSG", name, rs.Type)
		return
	}

	if strings.TrimSpace(rs.Definition) == "" {
		result.AddError("%s has an empty %s definition", name, rs.Type)
	}
}
