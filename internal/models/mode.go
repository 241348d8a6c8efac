package models

// Mode selects which kind of generative operation the workspace submits.
type Mode string

const (
	ModeEdit     Mode = "edit"
	ModeGenerate Mode = "generate"
	ModeVideo    Mode = "video"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeEdit, ModeGenerate, ModeVideo:
		return true
	}
	return false
}
