package view

// SearchInput is the text entry emitting the raw query on every edit.
type SearchInput struct {
	Name        string
	Value       string
	Placeholder string
	OnSearch    func(string)
}

// Change forwards the raw control value to the callback.
func (s SearchInput) Change(raw string) {
	if s.OnSearch != nil {
		s.OnSearch(raw)
	}
}
