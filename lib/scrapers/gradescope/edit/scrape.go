package edit

import (
	"fmt"
	"strconv"

	"gradescrape-backend/lib/gstime"
	"gradescrape-backend/lib/htmlutil"
	"gradescrape-backend/lib/scrapers/gradescope/core"

	"github.com/PuerkitoBio/goquery"
)

func requiredInput(doc *goquery.Document, name string) (string, error) {
	value, ok := htmlutil.InputValue(doc, name)
	if !ok {
		return "", &core.ScrapeError{Field: name}
	}
	return value, nil
}

func optionalInt(doc *goquery.Document, name string) (*int, error) {
	value, ok := htmlutil.InputValue(doc, name)
	if !ok || value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &n, nil
}

// ExtractSettings recovers the settings currently saved on an
// assignment's edit page. Optional controls that are absent decode to
// their zero values; a missing required control is a *core.ScrapeError,
// meaning the page no longer matches the field-name contract.
func ExtractSettings(doc *goquery.Document) (Settings, error) {
	var s Settings

	title, err := requiredInput(doc, "assignment[title]")
	if err != nil {
		return Settings{}, err
	}
	s.Title = title

	points, err := requiredInput(doc, "assignment[total_points]")
	if err != nil {
		return Settings{}, err
	}
	s.TotalPoints, err = strconv.ParseFloat(points, 64)
	if err != nil {
		return Settings{}, fmt.Errorf("assignment[total_points]: %w", err)
	}

	release, err := requiredInput(doc, "assignment[release_date_string]")
	if err != nil {
		return Settings{}, err
	}
	s.ReleaseDate, err = gstime.Decode(release)
	if err != nil {
		return Settings{}, err
	}

	due, err := requiredInput(doc, "assignment[due_date_string]")
	if err != nil {
		return Settings{}, err
	}
	s.DueDate, err = gstime.Decode(due)
	if err != nil {
		return Settings{}, err
	}

	s.AllowLateSubmissions = htmlutil.Checked(doc, "assignment[allow_late_submissions]")
	if late, ok := htmlutil.InputValue(doc, "assignment[hard_due_date_string]"); ok && late != "" {
		t, err := gstime.Decode(late)
		if err != nil {
			return Settings{}, err
		}
		s.LateDueDate = &t
	}

	if v, ok := htmlutil.CheckedValue(doc, "assignment[student_submission]"); ok {
		s.StudentSubmission = v == "true"
	}
	s.ManualGrading = htmlutil.Checked(doc, "assignment[manual_grading]")

	s.GroupSubmission = htmlutil.Checked(doc, "assignment[group_submission]")
	s.GroupSize, err = optionalInt(doc, "assignment[group_size]")
	if err != nil {
		return Settings{}, err
	}

	s.LeaderboardEnabled = htmlutil.Checked(doc, "assignment[leaderboard_enabled]")
	s.LeaderboardMaxEntries, err = optionalInt(doc, "assignment[leaderboard_max_entries]")
	if err != nil {
		return Settings{}, err
	}

	if ignored, ok := htmlutil.TextareaValue(doc, "assignment[ignored_files]"); ok {
		s.IgnoredFiles = ignored
	}

	if limit, ok := htmlutil.SelectedOption(doc, "assignment[memory_limit]"); ok {
		s.MemoryLimit, err = strconv.Atoi(limit)
		if err != nil {
			return Settings{}, fmt.Errorf("assignment[memory_limit]: %w", err)
		}
	}
	if timeout, ok := htmlutil.InputValue(doc, "assignment[autograder_timeout]"); ok && timeout != "" {
		s.AutograderTimeout, err = strconv.Atoi(timeout)
		if err != nil {
			return Settings{}, fmt.Errorf("assignment[autograder_timeout]: %w", err)
		}
	}

	s.SubmissionMethods = SubmissionMethods{
		Upload:    htmlutil.Checked(doc, "assignment[submission_methods[upload]]"),
		Github:    htmlutil.Checked(doc, "assignment[submission_methods[github]]"),
		Bitbucket: htmlutil.Checked(doc, "assignment[submission_methods[bitbucket]]"),
	}

	return s, nil
}
