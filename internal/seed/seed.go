// Package seed loads the question bank: a built-in starter catalog and
// spreadsheet imports.
package seed

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"neetmentor-backend/internal/models"
)

// QuestionRow is one question read from a sheet, before it is given a topic id.
type QuestionRow struct {
	Row     int
	Subject string
	Topic   string
	models.Question
}

// DefaultCatalog is the starter bank installed by `seed`.
var DefaultCatalog = []QuestionRow{
	{Subject: "Physics", Topic: "Kinematics", Question: models.Question{
		Content:       "A body starts from rest with uniform acceleration 2 m/s². Its displacement after 5 s is",
		Options:       []string{"10 m", "25 m", "50 m", "5 m"},
		CorrectOption: 1,
		Difficulty:    models.DifficultyEasy,
	}},
	{Subject: "Chemistry", Topic: "Mole Concept", Question: models.Question{
		Content:       "The number of moles in 22 g of CO2 is",
		Options:       []string{"0.25", "0.5", "1", "2"},
		CorrectOption: 1,
		Difficulty:    models.DifficultyEasy,
	}},
	{Subject: "Biology", Topic: "Cell: The Unit of Life", Question: models.Question{
		Content:       "Which organelle is known as the powerhouse of the cell?",
		Options:       []string{"Golgi body", "Ribosome", "Mitochondrion", "Lysosome"},
		CorrectOption: 2,
		Difficulty:    models.DifficultyEasy,
	}},
}

// Column layout of an import sheet. The first row is a header.
const (
	colSubject = iota
	colTopic
	colQuestion
	colOptionA
	colOptionB
	colOptionC
	colOptionD
	colCorrect
	colDifficulty
	colExplanation
)

// ReadSheet parses questions from an .xlsx workbook. An empty sheet name
// means the first sheet. Malformed rows are reported in problems and skipped.
func ReadSheet(r io.Reader, sheet string) (rows []QuestionRow, problems []string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	for i, cells := range all {
		if i == 0 {
			continue
		}
		rowNum := i + 1
		if blank(cells) {
			continue
		}
		q, problem := parseRow(rowNum, cells)
		if problem != "" {
			problems = append(problems, problem)
			continue
		}
		rows = append(rows, q)
	}
	return rows, problems, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func parseRow(rowNum int, cells []string) (QuestionRow, string) {
	row := QuestionRow{
		Row:     rowNum,
		Subject: cell(cells, colSubject),
		Topic:   cell(cells, colTopic),
	}
	row.Content = cell(cells, colQuestion)
	if row.Subject == "" || row.Topic == "" || row.Content == "" {
		return row, fmt.Sprintf("row %d: subject, topic and question are required", rowNum)
	}

	for i := colOptionA; i <= colOptionD; i++ {
		if opt := cell(cells, i); opt != "" {
			row.Options = append(row.Options, opt)
		}
	}
	if len(row.Options) < 2 {
		return row, fmt.Sprintf("row %d: at least two options are required", rowNum)
	}

	correct, ok := parseCorrect(cell(cells, colCorrect), len(row.Options))
	if !ok {
		return row, fmt.Sprintf("row %d: correct answer %q does not name an option", rowNum, cell(cells, colCorrect))
	}
	row.CorrectOption = correct

	row.Difficulty = normalizeDifficulty(cell(cells, colDifficulty))
	if row.Difficulty == "" {
		return row, fmt.Sprintf("row %d: difficulty must be Easy, Medium or Hard", rowNum)
	}

	if exp := cell(cells, colExplanation); exp != "" {
		row.Explanation = &exp
	}
	return row, ""
}

// parseCorrect accepts an option letter (A-D) or a 1-based option number
// and returns the 0-based index.
func parseCorrect(v string, n int) (int, bool) {
	if len(v) == 1 {
		c := strings.ToUpper(v)[0]
		if c >= 'A' && c <= 'D' {
			idx := int(c - 'A')
			return idx, idx < n
		}
	}
	num, err := strconv.Atoi(v)
	if err != nil || num < 1 || num > n {
		return 0, false
	}
	return num - 1, true
}

func normalizeDifficulty(v string) string {
	switch strings.ToLower(v) {
	case "", "medium":
		return models.DifficultyMedium
	case "easy":
		return models.DifficultyEasy
	case "hard":
		return models.DifficultyHard
	}
	return ""
}

type catalogWriter interface {
	UpsertSubject(ctx context.Context, name string) (int64, error)
	UpsertTopic(ctx context.Context, subjectID int64, name string) (int64, error)
	CreateQuestion(ctx context.Context, q *models.Question) (bool, error)
}

// Result counts what Load did.
type Result struct {
	Inserted int
	Skipped  int
}

// Load writes rows into the catalog, creating subjects and topics as
// needed. Questions already present in their topic are skipped.
func Load(ctx context.Context, catalog catalogWriter, rows []QuestionRow) (Result, error) {
	var res Result
	subjects := map[string]int64{}
	topics := map[string]int64{}

	for _, row := range rows {
		subjectID, ok := subjects[row.Subject]
		if !ok {
			id, err := catalog.UpsertSubject(ctx, row.Subject)
			if err != nil {
				return res, fmt.Errorf("failed to upsert subject %q: %w", row.Subject, err)
			}
			subjectID = id
			subjects[row.Subject] = id
		}

		topicKey := row.Subject + "/" + row.Topic
		topicID, ok := topics[topicKey]
		if !ok {
			id, err := catalog.UpsertTopic(ctx, subjectID, row.Topic)
			if err != nil {
				return res, fmt.Errorf("failed to upsert topic %q: %w", row.Topic, err)
			}
			topicID = id
			topics[topicKey] = id
		}

		q := row.Question
		q.TopicID = topicID
		inserted, err := catalog.CreateQuestion(ctx, &q)
		if err != nil {
			return res, fmt.Errorf("failed to insert question from row %d: %w", row.Row, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Skipped++
			log.Debug().Int("row", row.Row).Str("topic", row.Topic).Msg("question already exists")
		}
	}
	return res, nil
}
