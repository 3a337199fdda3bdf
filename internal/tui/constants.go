package tui

// UI element constants
const (
	CheckboxUnchecked = "[ ]"
	CheckboxChecked   = "[x]"

	BrowseTitle = "Select rules by category"
	FinishLabel = "Save rules"
)

// Notices printed by the controller when a session ends without copying.
const (
	NoticeNoCategories = "No rule categories found"
	NoticeNoSelection  = "No rules selected"
	NoticeCancelled    = "Category selection cancelled"
)
