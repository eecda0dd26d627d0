package domain

// Setting is a remote config entry. Flags set BoolValue, numeric settings set IntValue.
type Setting struct {
	Name      string
	BoolValue *bool
	IntValue  *int64
}
