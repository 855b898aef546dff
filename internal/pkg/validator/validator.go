package validator

// Validator validates structs using their field tags.
type Validator interface {
	// Validate returns nil when data passes all tag rules, otherwise an error
	// describing the failures (a V10ValidationError for field violations).
	Validate(data any) error
}
