package navigation

// Intent is a discrete request from the UI. The concrete types below are
// the whole inbound surface of the Controller.
type Intent interface {
	intent()
}

type (
	RequestNavigate  struct{ Input string }
	RequestOpen      struct{ Target Target }
	RequestBack      struct{}
	RequestForward   struct{}
	RequestReload    struct{}
	RequestNewTab    struct{}
	RequestCloseTab  struct{ Index int }
	RequestSwitchTab struct{ Index int }
)

func (RequestNavigate) intent()  {}
func (RequestOpen) intent()      {}
func (RequestBack) intent()      {}
func (RequestForward) intent()   {}
func (RequestReload) intent()    {}
func (RequestNewTab) intent()    {}
func (RequestCloseTab) intent()  {}
func (RequestSwitchTab) intent() {}

// Snapshot is what the UI renders after every intent or completion.
type Snapshot struct {
	Active       Tab
	ActiveIndex  int
	Tabs         []Tab
	CanGoBack    bool
	CanGoForward bool
}
