package ptr

func ToString(s string) *string {
	return &s
}

func ToInt(i int) *int {
	return &i
}

func ToUint(u uint) *uint {
	return &u
}

func ToBool(b bool) *bool {
	return &b
}

// Deref returns the pointed-to value or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
