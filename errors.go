package sidebar

import "errors"

var (
	// ErrDuplicateTeam is returned when a team name collides with an existing
	// team after color codes are stripped and case is folded.
	ErrDuplicateTeam = errors.New("team already exists")

	// ErrTeamNameTooLong is returned for team names over [MaxTeamNameLen].
	ErrTeamNameTooLong = errors.New("team name too long")

	// ErrReservedTeamName is returned for names in the line-team namespace.
	ErrReservedTeamName = errors.New("team name is reserved")

	// ErrLineTooLong is returned when a formatted line exceeds [MaxLineLen].
	ErrLineTooLong = errors.New("line too long")

	// ErrTooManyLines is returned when content needs more entry tokens than exist.
	ErrTooManyLines = errors.New("too many lines")

	// ErrNilHost is returned by constructors given a nil [Host].
	ErrNilHost = errors.New("host cannot be nil")
)

// ErrSurfaceUnavailable is returned when the host cannot create a surface for
// a viewer that needs one immediately.
var ErrSurfaceUnavailable = errors.New("surface unavailable")
