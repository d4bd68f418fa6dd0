package vector

// Field is a search vector token accepted by the provider search API.
// Only one vector may be active per query.
type Field string

// Vector field constants.
const (
	Name               Field = "name"
	SpecialtySynonym   Field = "specialty.synonym"
	ClinicalExperience Field = "clinical.experience"
	PracticeGroup      Field = "practice.group"
	// Unified searches across every vector at once.
	Unified Field = "unified"
)

// All lists the vector fields in API documentation order.
var All = []Field{Name, SpecialtySynonym, ClinicalExperience, PracticeGroup, Unified}

// IsValid checks if the field is one of the supported vectors.
func (f Field) IsValid() bool {
	for _, v := range All {
		if f == v {
			return true
		}
	}
	return false
}
