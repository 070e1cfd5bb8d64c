package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

const improvementMessage = "Growing consistently"

// StatCard is one of the headline tiles on the analytics page.
type StatCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Trend string `json:"trend"`
}

type SubjectMastery struct {
	Subject    string `json:"subject"`
	Completion int    `json:"completion"`
	Accuracy   int    `json:"accuracy"`
}

type DailyActivity struct {
	Day   string  `json:"day"`
	Hours float64 `json:"hours"`
}

type IntelligenceScore struct {
	Score       int    `json:"score"`
	Improvement string `json:"improvement"`
	Gain        int    `json:"gain"`
}

type Health struct {
	GoalCompletion int `json:"goalCompletion"`
	PyqCoverage    int `json:"pyqCoverage"`
	NotesCount     int `json:"notesCount"`
	// Streak is not computed yet and is always 0.
	Streak int `json:"streak"`
}

// Report is the analytics response. It is derived on every request and never stored.
type Report struct {
	OverallStats      []StatCard        `json:"overallStats"`
	SubjectMastery    []SubjectMastery  `json:"subjectMastery"`
	DailyActivity     []DailyActivity   `json:"dailyActivity"`
	IntelligenceScore IntelligenceScore `json:"intelligenceScore"`
	Health            Health            `json:"health"`
}

// BuildReport shapes a summary and its score into the response structure.
// Rounding to integers happens only here.
func BuildReport(s *Summary, scoring ScoringConfig) *Report {
	accuracy := s.Accuracy()
	hours := s.StudyHours()
	syllabusPct := s.SyllabusPercent()
	score := scoring.Score(accuracy, s.Attempts.TotalQuestions, hours)

	report := &Report{
		OverallStats: []StatCard{
			{
				Label: "Questions Solved",
				Value: strconv.Itoa(s.Attempts.TotalQuestions),
				Icon:  "Target",
				Color: "#4F46E5",
				Trend: fmt.Sprintf("+%d total", s.Attempts.TotalQuestions),
			},
			{
				Label: "Estimated Accuracy",
				Value: fmt.Sprintf("%d%%", roundInt(accuracy)),
				Icon:  "Award",
				Color: "#10B981",
				Trend: "Stable",
			},
			{
				Label: "Study Time",
				Value: strconv.FormatFloat(hours, 'f', 1, 64) + "h",
				Icon:  "Clock",
				Color: "#F59E0B",
				Trend: fmt.Sprintf("%d mins", s.TotalMinutes),
			},
			{
				Label: "Syllabus Done",
				Value: fmt.Sprintf("%d%%", roundInt(syllabusPct)),
				Icon:  "BookOpen",
				Color: "#EF4444",
				Trend: fmt.Sprintf("%d/%d", s.Syllabus.Completed, s.Syllabus.Total),
			},
		},
		SubjectMastery: make([]SubjectMastery, 0, len(s.Subjects)),
		DailyActivity:  make([]DailyActivity, 0, len(s.Daily)),
		IntelligenceScore: IntelligenceScore{
			Score:       score.Value,
			Improvement: improvementMessage,
			Gain:        score.Gain,
		},
		Health: Health{
			GoalCompletion: roundInt(syllabusPct),
			PyqCoverage:    roundInt(accuracy),
			NotesCount:     s.NotesCount,
			Streak:         0,
		},
	}

	for _, sub := range s.Subjects {
		report.SubjectMastery = append(report.SubjectMastery, SubjectMastery{
			Subject:    sub.Subject,
			Completion: roundInt(sub.Syllabus.Percent()),
			Accuracy:   roundInt(sub.Attempts.Accuracy()),
		})
	}
	for _, day := range s.Daily {
		report.DailyActivity = append(report.DailyActivity, DailyActivity{
			Day:   day.Date.Format("Mon"),
			Hours: day.Hours(),
		})
	}

	return report
}

// Service produces analytics reports for users.
type Service struct {
	aggregator *Aggregator
	scoring    ScoringConfig
}

func NewService(aggregator *Aggregator, scoring ScoringConfig) *Service {
	return &Service{aggregator: aggregator, scoring: scoring}
}

// Report aggregates the user's records and assembles the response. It is
// read-only over source records and safe to retry.
func (s *Service) Report(ctx context.Context, userID uuid.UUID) (*Report, error) {
	summary, err := s.aggregator.Summarize(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildReport(summary, s.scoring), nil
}

// roundInt rounds half to even, so 62.5 becomes 62.
func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}

// Snapshot returns the unrounded summary and its score.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) (*Summary, Score, error) {
	summary, err := s.aggregator.Summarize(ctx, userID)
	if err != nil {
		return nil, Score{}, err
	}
	return summary, s.scoring.Score(summary.Accuracy(), summary.Attempts.TotalQuestions, summary.StudyHours()), nil
}
