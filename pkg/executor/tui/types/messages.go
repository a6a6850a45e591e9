package types

// ToastMsg asks the update loop to show a toast notification. Overlays live
// in their own package and return it from a tea.Cmd instead of mutating the
// model directly.
type ToastMsg struct {
	Message string
	Details string
	Icon    string
	IsError bool
}
