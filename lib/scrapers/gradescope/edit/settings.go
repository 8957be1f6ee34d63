package edit

import (
	"strconv"
	"time"

	"gradescrape-backend/lib/gstime"
)

// ConfigurationError is a cross-field constraint violation caught before
// anything is written to gradescope. Compare with errors.Is against the
// Err* variants below.
type ConfigurationError struct {
	reason string
}

func (e *ConfigurationError) Error() string {
	return e.reason
}

var (
	ErrLateDueDateMissing     = &ConfigurationError{"allow_late_submissions requires a late due date"}
	ErrLateDueDateUnexpected  = &ConfigurationError{"late_due_date requires allow_late_submissions to be true"}
	ErrGroupSizeWithoutGroups = &ConfigurationError{"group_size requires group_submission to be true"}
	ErrGroupSizeTooSmall      = &ConfigurationError{"group_size should be larger than 1; for solo submissions disable group_submission instead"}
	ErrLeaderboardDisabled    = &ConfigurationError{"leaderboard_max_entries requires leaderboard_enabled to be true"}
	ErrLeaderboardMaxNegative = &ConfigurationError{"leaderboard_max_entries should be non-negative"}
	ErrTotalPointsNegative    = &ConfigurationError{"total_points should be non-negative"}
	ErrTimeLimitInvalid       = &ConfigurationError{"enforce_time_limit requires time_limit to be an integer >= 1"}
)

type SubmissionMethods struct {
	Upload    bool `json:"upload"`
	Github    bool `json:"github"`
	Bitbucket bool `json:"bitbucket"`
}

// Settings is the structured form of a programming assignment's edit
// page. It round-trips: ExtractSettings reads one off a live page and
// Serialize turns it back into the exact request the page would submit.
type Settings struct {
	Title       string    `json:"title"`
	TotalPoints float64   `json:"total_points"`
	ReleaseDate time.Time `json:"release_date"`
	DueDate     time.Time `json:"due_date"`

	AllowLateSubmissions bool       `json:"allow_late_submissions"`
	LateDueDate          *time.Time `json:"late_due_date,omitempty"`

	StudentSubmission bool `json:"student_submission"`
	ManualGrading     bool `json:"manual_grading"`

	GroupSubmission bool `json:"group_submission"`
	GroupSize       *int `json:"group_size,omitempty"`

	LeaderboardEnabled    bool `json:"leaderboard_enabled"`
	LeaderboardMaxEntries *int `json:"leaderboard_max_entries,omitempty"`

	IgnoredFiles      string `json:"ignored_files"`
	MemoryLimit       int    `json:"memory_limit"`
	AutograderTimeout int    `json:"autograder_timeout"`

	SubmissionMethods SubmissionMethods `json:"submission_methods"`
}

// validate applies the cross-field constraints in a fixed order (late
// pairing, group pairing, leaderboard pairing) and returns the derived
// request fields the pairings contribute. All-or-nothing: the first
// violation aborts with nothing to merge.
func (s Settings) validate() (map[string]string, error) {
	overrides := map[string]string{}

	if s.AllowLateSubmissions {
		if s.LateDueDate == nil {
			return nil, ErrLateDueDateMissing
		}
		overrides["assignment[hard_due_date_string]"] = gstime.Encode(*s.LateDueDate)
	} else if s.LateDueDate != nil {
		return nil, ErrLateDueDateUnexpected
	}

	if s.GroupSize != nil {
		if !s.GroupSubmission {
			return nil, ErrGroupSizeWithoutGroups
		}
		if *s.GroupSize <= 1 {
			return nil, ErrGroupSizeTooSmall
		}
		overrides["assignment[group_size]"] = strconv.Itoa(*s.GroupSize)
	}

	if s.LeaderboardMaxEntries != nil {
		if !s.LeaderboardEnabled {
			return nil, ErrLeaderboardDisabled
		}
		if *s.LeaderboardMaxEntries < 0 {
			return nil, ErrLeaderboardMaxNegative
		}
		overrides["assignment[leaderboard_max_entries]"] = strconv.Itoa(*s.LeaderboardMaxEntries)
	}

	if s.TotalPoints < 0 {
		return nil, ErrTotalPointsNegative
	}

	return overrides, nil
}

func boolBit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Serialize validates the settings and builds the literal field map the
// edit form submits, keyed by gradescope's own field names.
//
// Booleans are not rendered uniformly by the remote form and must not be
// normalized: student_submission goes out as "true"/"false" text,
// allow_late_submissions as the checkbox's "on"/"0", and the remaining
// flags as 1/0.
func (s Settings) Serialize(csrfToken string) (map[string]string, error) {
	overrides, err := s.validate()
	if err != nil {
		return nil, err
	}

	allowLate := "0"
	if s.AllowLateSubmissions {
		allowLate = "on"
	}

	fields := map[string]string{
		"authenticity_token": csrfToken,
		"utf8":               "✓",
		"_method":            "patch",
		"configuration":      "zip",

		"assignment[title]":                     s.Title,
		"assignment[total_points]":              strconv.FormatFloat(s.TotalPoints, 'f', -1, 64),
		"assignment[type]":                      "ProgrammingAssignment",
		"assignment[student_submission]":        strconv.FormatBool(s.StudentSubmission),
		"assignment[release_date_string]":       gstime.Encode(s.ReleaseDate),
		"assignment[due_date_string]":           gstime.Encode(s.DueDate),
		"assignment[allow_late_submissions]":    allowLate,
		"assignment[group_submission]":          boolBit(s.GroupSubmission),
		"assignment[manual_grading]":            boolBit(s.ManualGrading),
		"assignment[leaderboard_enabled]":       boolBit(s.LeaderboardEnabled),
		"assignment[rubric_visibility_setting]": "show_all_rubric_items",
		"assignment[ignored_files]":             s.IgnoredFiles,
		"assignment[autograder_timeout]":        strconv.Itoa(s.AutograderTimeout),
		"assignment[memory_limit]":              strconv.Itoa(s.MemoryLimit),

		"assignment[submission_methods[upload]]":    boolBit(s.SubmissionMethods.Upload),
		"assignment[submission_methods[github]]":    boolBit(s.SubmissionMethods.Github),
		"assignment[submission_methods[bitbucket]]": boolBit(s.SubmissionMethods.Bitbucket),

		"commit": "Save",
	}

	for k, v := range overrides {
		fields[k] = v
	}
	return fields, nil
}
