package query

import "github.com/meghashyamc/migemosearch/services/search"

const (
	warningImagePath = "Images/warning.png"
	errorImagePath   = "Images/error.png"
)

type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureBackendUnavailable
	FailureBackendError
	FailureBackendTimeout
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureBackendUnavailable:
		return "backend_unavailable"
	case FailureBackendError:
		return "backend_error"
	case FailureBackendTimeout:
		return "backend_timeout"
	default:
		return "unknown"
	}
}

// Action runs when the user picks a record. hide reports whether the result list may close.
// Errors are ones the pipeline could not handle itself and belong to the host.
type Action func() (hide bool, err error)

type Record struct {
	Title    string
	SubTitle string
	// IconPath is either a hit's own path (resolved to a file-type icon) or an image.
	IconPath string
	Action   Action
	// ContextData is the hit behind the record; nil for diagnostic records.
	ContextData *search.Hit
	Failure     FailureKind
}
