package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "A"},
		{80, "A"},
		{79.99, "B"},
		{70, "B"},
		{68.33, "C"},
		{50, "D"},
		{49.99, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		if got := GradeFor(tt.pct); got != tt.want {
			t.Errorf("GradeFor(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, 0, sum.Count)
	assert.Empty(t, sum.BySubject)

	results := []Result{
		{StudentID: "1", ClassName: "P1", Subject: "Maths", Percentage: 90, Grade: "A"},
		{StudentID: "2", ClassName: "P1", Subject: "Maths", Percentage: 40, Grade: "F"},
		{StudentID: "1", ClassName: "P1", Subject: "English", Percentage: 65, Grade: "C"},
		{StudentID: "3", ClassName: "P2", Subject: "English", Percentage: 55, Grade: "D"},
	}
	sum = Summarize(results)
	assert.Equal(t, 4, sum.Count)
	assert.Equal(t, 62.5, sum.Mean)
	assert.Equal(t, 0.75, sum.PassRate)

	if assert.Len(t, sum.BySubject, 2) {
		eng, maths := sum.BySubject[0], sum.BySubject[1]
		assert.Equal(t, "English", eng.Key)
		assert.Equal(t, 60.0, eng.Mean)
		assert.Equal(t, 1.0, eng.PassRate)
		assert.Equal(t, "Maths", maths.Key)
		assert.Equal(t, 40.0, maths.Min)
		assert.Equal(t, 90.0, maths.Max)
		assert.Equal(t, 1, maths.Grades["A"])
		assert.Equal(t, 0, maths.Grades["B"])
	}
	if assert.Len(t, sum.ByClass, 2) {
		assert.Equal(t, "P1", sum.ByClass[0].Key)
		assert.Equal(t, 3, sum.ByClass[0].Count)
	}
}

func TestResult_Key(t *testing.T) {
	a := Result{StudentID: "1", Subject: "Maths", Exam: "Term 1", Year: 2024}
	b := a
	b.Year = 2025
	assert.NotEqual(t, a.Key(), b.Key())

	c := a
	c.Subject, c.Exam = "MATHS", "term 1"
	assert.Equal(t, a.Key(), c.Key())
}
