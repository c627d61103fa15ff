package utils

func Ptr[T any](v T) *T {
	return &v
}

// StringPtr is Ptr for config values, where an empty string means unset.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
