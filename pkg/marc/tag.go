package marc

// IsValidTag reports whether tag is a three character field tag.
func IsValidTag(tag string) bool {
	return len(tag) == 3
}

// IsControlTag reports whether tag names a control field ("00X").
func IsControlTag(tag string) bool {
	return len(tag) >= 2 && tag[0] == '0' && tag[1] == '0'
}

// IsControlNumberTag reports whether tag is the control-number tag.
func IsControlNumberTag(tag string) bool {
	return tag == ControlNumberTag
}
