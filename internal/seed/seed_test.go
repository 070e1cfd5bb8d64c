package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"neetmentor-backend/internal/models"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var header = []any{"Subject", "Topic", "Question", "A", "B", "C", "D", "Correct", "Difficulty", "Explanation"}

func TestReadSheet(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", [][]any{
		header,
		{"Physics", "Kinematics", "Unit of acceleration?", "m/s", "m/s²", "m", "s", "B", "easy", "Change in velocity per second"},
		{"Chemistry", "Mole Concept", "Moles in 18 g of water?", "0.5", "1", "2", "", 2, "", ""},
		{},
		{"Biology", "", "Missing topic", "a", "b", "", "", "A", "", ""},
		{"Biology", "Cell", "Only one option", "a", "", "", "", "A", "", ""},
		{"Biology", "Cell", "Bad answer", "a", "b", "", "", "D", "", ""},
		{"Biology", "Cell", "Bad difficulty", "a", "b", "", "", "1", "Insane", ""},
	})

	rows, problems, err := ReadSheet(buf, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	phy := rows[0]
	assert.Equal(t, 2, phy.Row)
	assert.Equal(t, "Physics", phy.Subject)
	assert.Equal(t, "Kinematics", phy.Topic)
	assert.Equal(t, []string{"m/s", "m/s²", "m", "s"}, phy.Options)
	assert.Equal(t, 1, phy.CorrectOption)
	assert.Equal(t, models.DifficultyEasy, phy.Difficulty)
	require.NotNil(t, phy.Explanation)
	assert.Equal(t, "Change in velocity per second", *phy.Explanation)

	chem := rows[1]
	assert.Equal(t, []string{"0.5", "1", "2"}, chem.Options)
	assert.Equal(t, 1, chem.CorrectOption)
	assert.Equal(t, models.DifficultyMedium, chem.Difficulty)
	assert.Nil(t, chem.Explanation)

	require.Len(t, problems, 4)
	assert.True(t, strings.HasPrefix(problems[0], "row 5:"))
	assert.Contains(t, problems[1], "at least two options")
	assert.Contains(t, problems[2], `"D"`)
	assert.Contains(t, problems[3], "difficulty")
}

func TestReadSheetNamedSheet(t *testing.T) {
	buf := buildWorkbook(t, "Bank", [][]any{
		header,
		{"Physics", "Optics", "Focal length of a plane mirror?", "0", "infinite", "", "", "b", "Hard", ""},
	})

	rows, problems, err := ReadSheet(buf, "Bank")
	require.NoError(t, err)
	assert.Empty(t, problems)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].CorrectOption)
	assert.Equal(t, models.DifficultyHard, rows[0].Difficulty)

	buf = buildWorkbook(t, "Bank", [][]any{header})
	_, _, err = ReadSheet(buf, "Missing")
	assert.Error(t, err)
}

func TestReadSheetNotAWorkbook(t *testing.T) {
	_, _, err := ReadSheet(strings.NewReader("subject,topic\n"), "")
	assert.Error(t, err)
}

func TestParseCorrect(t *testing.T) {
	tests := []struct {
		in     string
		n      int
		want   int
		wantOK bool
	}{
		{"A", 4, 0, true},
		{"d", 4, 3, true},
		{"C", 2, 2, false},
		{"1", 4, 0, true},
		{"4", 4, 3, true},
		{"5", 4, 0, false},
		{"0", 4, 0, false},
		{"", 4, 0, false},
		{"E", 4, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseCorrect(tt.in, tt.n)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

type memCatalog struct {
	subjects  map[string]int64
	topics    map[string]int64
	questions map[string]bool
	upserts   int
	failOn    string
}

func newMemCatalog() *memCatalog {
	return &memCatalog{subjects: map[string]int64{}, topics: map[string]int64{}, questions: map[string]bool{}}
}

func (m *memCatalog) UpsertSubject(ctx context.Context, name string) (int64, error) {
	m.upserts++
	if id, ok := m.subjects[name]; ok {
		return id, nil
	}
	id := int64(len(m.subjects) + 1)
	m.subjects[name] = id
	return id, nil
}

func (m *memCatalog) UpsertTopic(ctx context.Context, subjectID int64, name string) (int64, error) {
	m.upserts++
	key := fmt.Sprintf("%d/%s", subjectID, name)
	if id, ok := m.topics[key]; ok {
		return id, nil
	}
	id := int64(len(m.topics) + 1)
	m.topics[key] = id
	return id, nil
}

func (m *memCatalog) CreateQuestion(ctx context.Context, q *models.Question) (bool, error) {
	if q.Content == m.failOn {
		return false, errors.New("insert failed")
	}
	key := fmt.Sprintf("%d/%s", q.TopicID, q.Content)
	if m.questions[key] {
		return false, nil
	}
	m.questions[key] = true
	return true, nil
}

func TestLoad(t *testing.T) {
	catalog := newMemCatalog()
	ctx := context.Background()

	res, err := Load(ctx, catalog, DefaultCatalog)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 3}, res)
	assert.Len(t, catalog.subjects, 3)

	res, err = Load(ctx, catalog, DefaultCatalog)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 3}, res)
}

func TestLoadCachesSubjectsAndTopics(t *testing.T) {
	catalog := newMemCatalog()
	rows := []QuestionRow{
		{Subject: "Physics", Topic: "Optics", Question: models.Question{Content: "q1"}},
		{Subject: "Physics", Topic: "Optics", Question: models.Question{Content: "q2"}},
		{Subject: "Physics", Topic: "Waves", Question: models.Question{Content: "q3"}},
	}

	res, err := Load(context.Background(), catalog, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	// one subject plus two topics
	assert.Equal(t, 3, catalog.upserts)
}

func TestLoadStopsOnError(t *testing.T) {
	catalog := newMemCatalog()
	catalog.failOn = "q2"
	rows := []QuestionRow{
		{Row: 2, Subject: "Physics", Topic: "Optics", Question: models.Question{Content: "q1"}},
		{Row: 3, Subject: "Physics", Topic: "Optics", Question: models.Question{Content: "q2"}},
	}

	res, err := Load(context.Background(), catalog, rows)
	assert.ErrorContains(t, err, "row 3")
	assert.Equal(t, 1, res.Inserted)
}
