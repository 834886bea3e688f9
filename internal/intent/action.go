// Package intent turns a transcribed utterance into an Action by testing an
// ordered table of keyword patterns. The first pattern that matches wins.
package intent

// Action is the outcome of routing one utterance.
type Action interface {
	isAction()
}

type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

type (
	Play     struct{ Query string }
	Weather  struct{ City string }
	Search   struct{ Topic string }
	Reminder struct {
		Task    string
		Minutes int
	}
	VolumeSet       struct{ Percent int }
	VolumeStep      struct{ Direction Direction }
	VolumeMute      struct{}
	BrightnessSet   struct{ Percent int }
	Screenshot      struct{}
	EmptyTrash      struct{}
	LockWorkstation struct{}
	Shutdown        struct{}
	OpenApp         struct{ Name string }
	Converse        struct{ Text string }
	Exit            struct{}

	// Clarify is returned when a pattern matched but its parameters could not
	// be extracted. Prompt is spoken back to the user.
	Clarify struct {
		Intent string
		Prompt string
	}
)

func (Play) isAction()            {}
func (Weather) isAction()         {}
func (Search) isAction()          {}
func (Reminder) isAction()        {}
func (VolumeSet) isAction()       {}
func (VolumeStep) isAction()      {}
func (VolumeMute) isAction()      {}
func (BrightnessSet) isAction()   {}
func (Screenshot) isAction()      {}
func (EmptyTrash) isAction()      {}
func (LockWorkstation) isAction() {}
func (Shutdown) isAction()        {}
func (OpenApp) isAction()         {}
func (Converse) isAction()        {}
func (Exit) isAction()            {}
func (Clarify) isAction()         {}
