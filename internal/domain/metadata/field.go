package metadata

type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeSelect FieldType = "select"
)

var validFieldTypes = map[FieldType]bool{
	FieldTypeText:   true,
	FieldTypeNumber: true,
	FieldTypeDate:   true,
	FieldTypeSelect: true,
}

func (ft FieldType) String() string {
	return string(ft)
}

func (ft FieldType) IsValid() bool {
	return validFieldTypes[ft]
}

// Field describes one custom field of a space's schema.
type Field struct {
	name      string
	label     string
	fieldType FieldType
	options   []string
}

func (f Field) Name() string {
	return f.name
}

func (f Field) Label() string {
	return f.label
}

func (f Field) Type() FieldType {
	return f.fieldType
}

func (f Field) Options() []string {
	optionsCopy := make([]string, len(f.options))
	copy(optionsCopy, f.options)
	return optionsCopy
}

// IsValidValue reports whether value is acceptable for a select field. For
// other field types any non-empty value passes; interpretation belongs to the
// excluded presentation layer.
func (f Field) IsValidValue(value string) bool {
	if f.fieldType != FieldTypeSelect {
		return true
	}
	for _, opt := range f.options {
		if opt == value {
			return true
		}
	}
	return false
}
