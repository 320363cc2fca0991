package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	recs := []Record{
		{StudentID: "b", StudentName: "Bob", ClassName: "P1", Date: "2024-03-04", Status: StatusLate},
		{StudentID: "b", StudentName: "Bob", ClassName: "P1", Date: "2024-03-05", Status: StatusAbsent},
		{StudentID: "a", StudentName: "Ana", ClassName: "P1", Date: "2024-03-04", Status: StatusPresent},
		{StudentID: "c", StudentName: "Cleo", ClassName: "P0", Date: "2024-03-04", Status: StatusExcused},
	}
	sum := Summarize(recs)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Attended)
	assert.Equal(t, 0.5, sum.OverallRate)

	if assert.Len(t, sum.Students, 3) {
		// class then name
		assert.Equal(t, "Cleo", sum.Students[0].StudentName)
		assert.Equal(t, "Ana", sum.Students[1].StudentName)

		bob := sum.Students[2]
		assert.Equal(t, 1, bob.Late)
		assert.Equal(t, 1, bob.Absent)
		assert.Equal(t, 0.5, bob.Rate)
	}

	empty := Summarize(nil)
	assert.Equal(t, 0.0, empty.OverallRate)
	assert.Empty(t, empty.Students)
}
