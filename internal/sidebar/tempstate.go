package sidebar

// TempState holds transient flags shared with sibling panels.
type TempState struct {
	addingTempCategory bool
}

// AddingTempCategory reports whether the create form is shown.
func (t *TempState) AddingTempCategory() bool {
	return t.addingTempCategory
}

func (t *TempState) SetAddingTempCategory(v bool) {
	t.addingTempCategory = v
}
