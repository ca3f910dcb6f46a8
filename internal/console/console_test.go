package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "surveycli/pkg/contracts/api/v1"
	"surveycli/pkg/contracts/domain"
)

func TestTable(t *testing.T) {
	tbl := domain.NewTable(domain.Key{"Region", "North"}, domain.Key{"Region", "South*"})
	tbl.Title = "Contact by region"
	require.NoError(t, tbl.AppendRow(domain.Key{"Contact", "Email"}, domain.Text("50%"), domain.Text("10%")))
	require.NoError(t, tbl.AppendRow(domain.Key{"Contact", "Phone"}, domain.Text("50%"), domain.Text("90%")))

	var buf bytes.Buffer
	NewRenderer(&buf).DisableColor().Table(tbl, 0.05)
	out := buf.String()

	assert.Contains(t, out, "Contact by region")
	assert.Contains(t, out, "Region / South*")
	assert.Contains(t, out, "Email")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("| Contact ")), "outer row label printed once")
	assert.Contains(t, out, "significantly different between groups at the 0.05 level")
	assert.NotContains(t, out, "\x1b[")
}

func TestTableWithoutMarker(t *testing.T) {
	tbl := domain.NewTable(domain.Key{"Answer"}, domain.Key{"Count"})
	require.NoError(t, tbl.AppendRow(nil, domain.Text("Yes"), domain.Int(3)))

	var buf bytes.Buffer
	NewRenderer(&buf).DisableColor().Table(tbl, 0.05)

	assert.Contains(t, buf.String(), "Yes")
	assert.NotContains(t, buf.String(), "significantly")
}

func TestCodebook(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf).DisableColor()
	r.Codebook(api.CodebookResponse{
		Title:       "Customer survey",
		Respondents: 120,
		Questions: []api.QuestionSummary{
			{ID: "q1", Type: "single", Variables: []string{"q1"}, Text: "Satisfied?", Answers: "Yes (1), No (2)"},
		},
		Matrices: []api.MatrixSummary{
			{ID: "m1", Type: "single", Questions: []string{"q1", "q2"}, Text: "Service", Answers: "Yes (1), No (2)"},
		},
	})
	r.Errorf("%v", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "120 respondents")
	assert.Contains(t, out, "Yes (1), No (2)")
	assert.Contains(t, out, "q1, q2")
	assert.Contains(t, out, "Error: boom")
}
