package discovery

// State is where a flow currently sits in the selection funnel.
type State int

const (
	// StateNoCompany is the initial state, before any selection.
	StateNoCompany State = iota
	// StateNeedRegistration means the chosen company maps to more than one
	// registration and the user must pick.
	StateNeedRegistration
	// StatePeriodsLoading means the competência fetch is in flight.
	StatePeriodsLoading
	// StatePeriodsLoaded means the available years are known.
	StatePeriodsLoaded
	// StateYearSelected means a year was chosen and months are available.
	StateYearSelected
	// StateResolving means the document search is in flight.
	StateResolving
	// StateChoosing means the search returned several candidates for the
	// same period and the user must disambiguate.
	StateChoosing
	// StateResolved means a reference is ready for retrieval.
	StateResolved
	// StateNotFound means the search legitimately came back empty.
	StateNotFound
	// StateError means the last step failed and can be retried.
	StateError
)

func (s State) String() string {
	switch s {
	case StateNoCompany:
		return "no_company"
	case StateNeedRegistration:
		return "need_registration"
	case StatePeriodsLoading:
		return "periods_loading"
	case StatePeriodsLoaded:
		return "periods_loaded"
	case StateYearSelected:
		return "year_selected"
	case StateResolving:
		return "resolving"
	case StateChoosing:
		return "choosing"
	case StateResolved:
		return "resolved"
	case StateNotFound:
		return "not_found"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
