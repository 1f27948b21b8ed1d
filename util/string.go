package util

func StringPtr(s string) *string {
	return &s
}

func BoolPtr(b bool) *bool {
	return &b
}

func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
