package provquery

import "strconv"

// Provider filter fields.
const (
	FieldGender               = "gender"
	FieldNPI                  = "npi"
	FieldSpecialties          = "specialties"
	FieldLanguages            = "languages"
	FieldDegrees              = "degrees"
	FieldInsurance            = "insurance"
	FieldAcceptingNewPatients = "accepting_new_patients"
	FieldClinical             = "clinical"
)

// Well-known parameter names.
const (
	ParamPage        = "page"
	ParamPerPage     = "per_page"
	ParamSort        = "sort"
	ParamShuffleSeed = "shuffle_seed"
)

// Name searches by provider name.
func (b *Builder) Name(v string) *Builder { return b.SetVector(VectorName, v) }

// SpecialtySynonym searches by specialty synonym.
func (b *Builder) SpecialtySynonym(v string) *Builder { return b.SetVector(VectorSpecialtySynonym, v) }

// ClinicalExperience searches by clinical experience.
func (b *Builder) ClinicalExperience(v string) *Builder {
	return b.SetVector(VectorClinicalExperience, v)
}

// PracticeGroup searches by practice group.
func (b *Builder) PracticeGroup(v string) *Builder { return b.SetVector(VectorPracticeGroup, v) }

// Unified searches across all vectors.
func (b *Builder) Unified(v string) *Builder { return b.SetVector(VectorUnified, v) }

// Gender filters by gender.
func (b *Builder) Gender(values ...string) *Builder { return b.SetFilter(FieldGender, OR, values...) }

// NPI filters by National Provider Identifier.
func (b *Builder) NPI(values ...string) *Builder { return b.SetFilter(FieldNPI, OR, values...) }

// Specialties filters by specialty.
func (b *Builder) Specialties(values ...string) *Builder {
	return b.SetFilter(FieldSpecialties, OR, values...)
}

// Languages filters by spoken language.
func (b *Builder) Languages(values ...string) *Builder {
	return b.SetFilter(FieldLanguages, OR, values...)
}

// Degrees filters by degree.
func (b *Builder) Degrees(values ...string) *Builder { return b.SetFilter(FieldDegrees, OR, values...) }

// Insurance filters by accepted insurance plan.
func (b *Builder) Insurance(values ...string) *Builder {
	return b.SetFilter(FieldInsurance, OR, values...)
}

// AcceptingNewPatients filters on whether the provider takes new patients.
func (b *Builder) AcceptingNewPatients(accepting bool) *Builder {
	return b.SetFilter(FieldAcceptingNewPatients, OR, strconv.FormatBool(accepting))
}

// Clinical touches the clinical field and adds key:value groups under AND.
func (b *Builder) Clinical(groups ...Group) *Builder {
	b.lastField = FieldClinical
	return b.With(groups...)
}

// Page sets the result page.
func (b *Builder) Page(n int) *Builder { return b.SetParam(ParamPage, n) }

// PerPage sets the page size.
func (b *Builder) PerPage(n int) *Builder { return b.SetParam(ParamPerPage, n) }

// Sort sets the sort order.
func (b *Builder) Sort(s string) *Builder { return b.SetParam(ParamSort, s) }

// Shuffle sets the shuffle seed.
func (b *Builder) Shuffle(seed int64) *Builder { return b.SetParam(ParamShuffleSeed, seed) }

// Near constrains results to within distance of place.
func (b *Builder) Near(place string, distance float64) *Builder {
	return b.SetLocation(place, distance)
}
