package edit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func baseSettings() Settings {
	return Settings{
		Title:       "Homework 1",
		TotalPoints: 100,
		ReleaseDate: time.Date(2021, time.September, 3, 20, 8, 0, 0, time.Local),
		DueDate:     time.Date(2021, time.September, 10, 23, 59, 0, 0, time.Local),

		StudentSubmission: true,
		MemoryLimit:       768,
		AutograderTimeout: 600,

		SubmissionMethods: SubmissionMethods{Upload: true},
	}
}

func TestValidateRejectsBrokenPairings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
		expect error
	}{
		{
			name: "late submissions without a late due date",
			mutate: func(s *Settings) {
				s.AllowLateSubmissions = true
			},
			expect: ErrLateDueDateMissing,
		},
		{
			name: "late due date without late submissions",
			mutate: func(s *Settings) {
				s.LateDueDate = ptr(time.Date(2021, time.September, 12, 23, 59, 0, 0, time.Local))
			},
			expect: ErrLateDueDateUnexpected,
		},
		{
			name: "group size without group submission",
			mutate: func(s *Settings) {
				s.GroupSize = ptr(3)
			},
			expect: ErrGroupSizeWithoutGroups,
		},
		{
			name: "group size of one",
			mutate: func(s *Settings) {
				s.GroupSubmission = true
				s.GroupSize = ptr(1)
			},
			expect: ErrGroupSizeTooSmall,
		},
		{
			name: "leaderboard cap without leaderboard",
			mutate: func(s *Settings) {
				s.LeaderboardMaxEntries = ptr(10)
			},
			expect: ErrLeaderboardDisabled,
		},
		{
			name: "negative leaderboard cap",
			mutate: func(s *Settings) {
				s.LeaderboardEnabled = true
				s.LeaderboardMaxEntries = ptr(-1)
			},
			expect: ErrLeaderboardMaxNegative,
		},
		{
			name: "negative total points",
			mutate: func(s *Settings) {
				s.TotalPoints = -5
			},
			expect: ErrTotalPointsNegative,
		},
		{
			name: "late pairing checked before group pairing",
			mutate: func(s *Settings) {
				s.AllowLateSubmissions = true
				s.GroupSize = ptr(1)
			},
			expect: ErrLateDueDateMissing,
		},
		{
			name: "group pairing checked before leaderboard pairing",
			mutate: func(s *Settings) {
				s.GroupSize = ptr(3)
				s.LeaderboardMaxEntries = ptr(-1)
			},
			expect: ErrGroupSizeWithoutGroups,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			settings := baseSettings()
			test.mutate(&settings)

			_, err := settings.Serialize("token")
			require.ErrorIs(t, err, test.expect)

			var confErr *ConfigurationError
			require.ErrorAs(t, err, &confErr)
		})
	}
}

func TestSerialize(t *testing.T) {
	settings := baseSettings()
	settings.IgnoredFiles = "*.pyc"

	fields, err := settings.Serialize("tok123")
	require.NoError(t, err)

	require.Equal(t, map[string]string{
		"authenticity_token": "tok123",
		"utf8":               "✓",
		"_method":            "patch",
		"configuration":      "zip",

		"assignment[title]":                     "Homework 1",
		"assignment[total_points]":              "100",
		"assignment[type]":                      "ProgrammingAssignment",
		"assignment[student_submission]":        "true",
		"assignment[release_date_string]":       "Sep 3 2021 08:08 PM",
		"assignment[due_date_string]":           "Sep 10 2021 11:59 PM",
		"assignment[allow_late_submissions]":    "0",
		"assignment[group_submission]":          "0",
		"assignment[manual_grading]":            "0",
		"assignment[leaderboard_enabled]":       "0",
		"assignment[rubric_visibility_setting]": "show_all_rubric_items",
		"assignment[ignored_files]":             "*.pyc",
		"assignment[autograder_timeout]":        "600",
		"assignment[memory_limit]":              "768",

		"assignment[submission_methods[upload]]":    "1",
		"assignment[submission_methods[github]]":    "0",
		"assignment[submission_methods[bitbucket]]": "0",

		"commit": "Save",
	}, fields)
}

func TestSerializeOptionalPairings(t *testing.T) {
	settings := baseSettings()
	settings.StudentSubmission = false
	settings.AllowLateSubmissions = true
	settings.LateDueDate = ptr(time.Date(2021, time.September, 12, 23, 59, 0, 0, time.Local))
	settings.GroupSubmission = true
	settings.GroupSize = ptr(4)
	settings.LeaderboardEnabled = true
	settings.LeaderboardMaxEntries = ptr(25)
	settings.ManualGrading = true
	settings.SubmissionMethods = SubmissionMethods{Upload: true, Github: true}

	fields, err := settings.Serialize("tok123")
	require.NoError(t, err)

	require.Equal(t, "on", fields["assignment[allow_late_submissions]"])
	require.Equal(t, "Sep 12 2021 11:59 PM", fields["assignment[hard_due_date_string]"])
	require.Equal(t, "false", fields["assignment[student_submission]"])
	require.Equal(t, "1", fields["assignment[group_submission]"])
	require.Equal(t, "4", fields["assignment[group_size]"])
	require.Equal(t, "1", fields["assignment[manual_grading]"])
	require.Equal(t, "1", fields["assignment[leaderboard_enabled]"])
	require.Equal(t, "25", fields["assignment[leaderboard_max_entries]"])
	require.Equal(t, "1", fields["assignment[submission_methods[upload]]"])
	require.Equal(t, "1", fields["assignment[submission_methods[github]]"])
	require.Equal(t, "0", fields["assignment[submission_methods[bitbucket]]"])
}

func TestSerializeFractionalPoints(t *testing.T) {
	settings := baseSettings()
	settings.TotalPoints = 12.5

	fields, err := settings.Serialize("tok123")
	require.NoError(t, err)
	require.Equal(t, "12.5", fields["assignment[total_points]"])
}

func TestSerializeZeroLeaderboardCap(t *testing.T) {
	settings := baseSettings()
	settings.LeaderboardEnabled = true
	settings.LeaderboardMaxEntries = ptr(0)

	fields, err := settings.Serialize("tok123")
	require.NoError(t, err)
	require.Equal(t, "0", fields["assignment[leaderboard_max_entries]"])
}
