package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Subjects is the fixed list reported in subject mastery, in display order.
var Subjects = []string{"Physics", "Chemistry", "Biology"}

// ActivityDays is the length of the daily activity series.
const ActivityDays = 7

// maxParallelReads bounds how many store reads one report issues at once.
const maxParallelReads = 6

// AttemptTotals are summed quiz attempt counters.
type AttemptTotals struct {
	TotalQuestions int
	CorrectAnswers int
}

// Accuracy returns correct/total*100, or 0 when nothing was attempted.
func (t AttemptTotals) Accuracy() float64 {
	return percent(t.CorrectAnswers, t.TotalQuestions)
}

func (t AttemptTotals) add(o AttemptTotals) AttemptTotals {
	return AttemptTotals{
		TotalQuestions: t.TotalQuestions + o.TotalQuestions,
		CorrectAnswers: t.CorrectAnswers + o.CorrectAnswers,
	}
}

// AttemptRow is the slice of a quiz attempt needed for subject attribution.
type AttemptRow struct {
	QuizName       string
	Subject        *string
	TotalQuestions int
	CorrectAnswers int
}

// RecordStore is the read side of persistence the aggregator needs. All
// methods return zero values rather than errors when no rows match.
type RecordStore interface {
	AttemptRows(ctx context.Context, userID uuid.UUID) ([]AttemptRow, error)
	TotalStudyMinutes(ctx context.Context, userID uuid.UUID) (int, error)
	StudyMinutesOn(ctx context.Context, userID uuid.UUID, day time.Time) (int, error)
	// StorageBlob fetches the user's storage blob, creating an empty one if absent.
	StorageBlob(ctx context.Context, userID uuid.UUID) (map[string]any, error)
}

// NoteCounter counts notes belonging to a user.
type NoteCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// SubjectStats pairs attributed attempts with the subject's syllabus subtree.
type SubjectStats struct {
	Subject  string
	Attempts AttemptTotals
	Syllabus TopicCount
}

// DayActivity is the minutes studied on one calendar day.
type DayActivity struct {
	Date    time.Time
	Minutes int
}

// Hours converts the day's minutes to hours rounded to one decimal.
func (d DayActivity) Hours() float64 {
	return roundTo(float64(d.Minutes)/60, 1)
}

// Summary holds the raw aggregates for one user.
type Summary struct {
	Attempts     AttemptTotals
	TotalMinutes int
	Syllabus     TopicCount
	Subjects     []SubjectStats
	Daily        []DayActivity
	NotesCount   int
}

// Accuracy is the overall answer accuracy in percent.
func (s *Summary) Accuracy() float64 { return s.Attempts.Accuracy() }

// StudyHours is total study time in hours rounded to one decimal.
func (s *Summary) StudyHours() float64 {
	return roundTo(float64(s.TotalMinutes)/60, 1)
}

// SyllabusPercent is the share of completed syllabus topics in percent.
func (s *Summary) SyllabusPercent() float64 { return s.Syllabus.Percent() }

// Aggregator computes a Summary from a RecordStore. It is safe for
// concurrent use; it holds no per-request state.
type Aggregator struct {
	store RecordStore
	notes NoteCounter
	loc   *time.Location
	now   func() time.Time
}

// NewAggregator builds an aggregator whose "today" is evaluated in loc.
// A nil loc means UTC.
func NewAggregator(store RecordStore, notes NoteCounter, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{store: store, notes: notes, loc: loc, now: time.Now}
}

// Summarize reads the user's records and aggregates them. Reads are
// independent and run concurrently; the first failure cancels the rest and
// is returned.
func (a *Aggregator) Summarize(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	var (
		rows    []AttemptRow
		minutes int
		blob    map[string]any
		notes   int
		days    = LastDays(a.now().In(a.loc), ActivityDays)
		daily   = make([]DayActivity, len(days))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)

	g.Go(func() (err error) {
		rows, err = a.store.AttemptRows(gctx, userID)
		return wrap("attempt rows", err)
	})
	g.Go(func() (err error) {
		minutes, err = a.store.TotalStudyMinutes(gctx, userID)
		return wrap("study minutes", err)
	})
	g.Go(func() (err error) {
		blob, err = a.store.StorageBlob(gctx, userID)
		return wrap("storage blob", err)
	})
	if a.notes != nil {
		g.Go(func() (err error) {
			notes, err = a.notes.CountByUser(gctx, userID)
			return wrap("note count", err)
		})
	}
	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			m, err := a.store.StudyMinutesOn(gctx, userID, day)
			if err != nil {
				return wrap("daily minutes", err)
			}
			daily[i] = DayActivity{Date: day, Minutes: m}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Overall and per-subject totals come from the same rows.
	var totals AttemptTotals
	for _, row := range rows {
		totals = totals.add(AttemptTotals{TotalQuestions: row.TotalQuestions, CorrectAnswers: row.CorrectAnswers})
	}

	syllabus := SyllabusFromBlob(blob)
	subjects := make([]SubjectStats, 0, len(Subjects))
	for _, subject := range Subjects {
		var st AttemptTotals
		for _, row := range rows {
			if MatchesSubject(row.QuizName, row.Subject, subject) {
				st = st.add(AttemptTotals{TotalQuestions: row.TotalQuestions, CorrectAnswers: row.CorrectAnswers})
			}
		}
		subjects = append(subjects, SubjectStats{
			Subject:  subject,
			Attempts: st,
			Syllabus: syllabus.SubjectCount(subject),
		})
	}

	return &Summary{
		Attempts:     totals,
		TotalMinutes: minutes,
		Syllabus:     syllabus.Count(),
		Subjects:     subjects,
		Daily:        daily,
		NotesCount:   notes,
	}, nil
}

// MatchesSubject reports whether an attempt counts toward subject. An
// explicit tag decides on its own; untagged attempts fall back to a
// case-insensitive substring match on the quiz name.
func MatchesSubject(quizName string, tag *string, subject string) bool {
	if tag != nil && strings.TrimSpace(*tag) != "" {
		return strings.EqualFold(strings.TrimSpace(*tag), subject)
	}
	return strings.Contains(strings.ToLower(quizName), strings.ToLower(subject))
}

// LastDays returns the n calendar days ending on today's date, oldest first,
// each at midnight in today's location.
func LastDays(today time.Time, n int) []time.Time {
	y, m, d := today.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = midnight.AddDate(0, 0, i-(n-1))
	}
	return days
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}

// roundTo rounds v to the given number of decimals, sending exact decimal
// ties to the even digit: 0.25 becomes 0.2 and 0.75 becomes 0.8.
func roundTo(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}
