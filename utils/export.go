package utils

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/form-builder/models"
)

const exportSheet = "Answers"

// AnswerTable is the flattened view of a form's answers: one row per answer,
// one column per question in form order.
type AnswerTable struct {
	Header []string
	Rows   [][]string
}

// BuildAnswerTable flattens answers (with QuestionsAnswers preloaded).
// Several contents for the same question in one answer are joined with "; ".
func BuildAnswerTable(questions []models.Question, answers []models.Answer) AnswerTable {
	header := []string{"answer_id", "submitted_at"}
	col := make(map[uint]int, len(questions))
	for i, q := range questions {
		header = append(header, SpreadsheetSafe(q.Title))
		col[q.ID] = i + 2
	}

	rows := make([][]string, 0, len(answers))
	for _, a := range answers {
		row := make([]string, len(header))
		row[0] = fmt.Sprintf("%d", a.ID)
		row[1] = a.CreatedAt.UTC().Format(time.RFC3339)
		for _, qa := range a.QuestionsAnswers {
			i, ok := col[qa.QuestionID]
			if !ok {
				continue
			}
			if row[i] == "" {
				row[i] = qa.Content
			} else {
				row[i] = strings.Join([]string{row[i], qa.Content}, "; ")
			}
		}
		for i := 2; i < len(row); i++ {
			row[i] = SpreadsheetSafe(row[i])
		}
		rows = append(rows, row)
	}
	return AnswerTable{Header: header, Rows: rows}
}

// SpreadsheetSafe prefixes a quote to user text that a spreadsheet would
// otherwise evaluate as a formula. Plain numbers such as "-7" are kept.
func SpreadsheetSafe(s string) string {
	if s == "" || !strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	return "'" + s
}

func (t AnswerTable) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t AnswerTable) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &t.Header); err != nil {
		return nil, err
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
