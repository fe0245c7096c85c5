package polling

// Status is the lifecycle stage of a feed.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is the tagged union {Idle, Loading, Success(data), Error(message)}.
// Data is meaningful only when Status is StatusSuccess and Message only when
// Status is StatusError.
type State[T any] struct {
	Status  Status
	Data    T
	Message string
}

// EventKind identifies a transition input.
type EventKind int

const (
	EventFetchStarted EventKind = iota
	EventFetchSucceeded
	EventFetchFailed
	EventReset
)

// Event drives Reduce.
type Event[T any] struct {
	Kind    EventKind
	Data    T
	Message string
}

// Idle returns the initial state.
func Idle[T any]() State[T] {
	return State[T]{Status: StatusIdle}
}

// Reduce is the pure transition function of a feed.
//
// Every fetch start enters Loading and discards the previous data. Success
// replaces the data wholesale; Error carries no data, so stale readings are
// never shown next to an error.
func Reduce[T any](s State[T], ev Event[T]) State[T] {
	switch ev.Kind {
	case EventFetchStarted:
		return State[T]{Status: StatusLoading}
	case EventFetchSucceeded:
		return State[T]{Status: StatusSuccess, Data: ev.Data}
	case EventFetchFailed:
		return State[T]{Status: StatusError, Message: ev.Message}
	case EventReset:
		return Idle[T]()
	default:
		return s
	}
}

// View is the read-only view model handed to the presentation layer.
type View[T any] struct {
	Status       Status  `json:"status"`
	Data         *T      `json:"data"`
	ErrorMessage *string `json:"errorMessage"`
}

// View projects the state into its view model.
func (s State[T]) View() View[T] {
	v := View[T]{Status: s.Status}
	switch s.Status {
	case StatusSuccess:
		data := s.Data
		v.Data = &data
	case StatusError:
		msg := s.Message
		v.ErrorMessage = &msg
	}
	return v
}

// MapView converts the data of a view model, keeping status and error.
func MapView[T, U any](v View[T], fn func(T) U) View[U] {
	out := View[U]{Status: v.Status, ErrorMessage: v.ErrorMessage}
	if v.Data != nil {
		u := fn(*v.Data)
		out.Data = &u
	}
	return out
}
