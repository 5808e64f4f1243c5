package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	assert.Equal(t, 5, PageCount(73, 15))
	assert.Equal(t, 8, PageCount(143, 20))
	assert.Equal(t, 1, PageCount(20, 20))
	assert.Equal(t, 0, PageCount(0, 20))
	assert.Equal(t, 0, PageCount(10, 0))

	page := PaginatedResponse[Student]{Items: make([]Student, 15), Total: 73}
	assert.Equal(t, 5, page.Pages(15))
}

func TestGroupDays(t *testing.T) {
	assert.Equal(t, []string{"1", "3", "5"}, Group{ScheduleDays: "1, 3,,5"}.Days())
	assert.Nil(t, Group{}.Days())
}

func TestStudentFullNameFallsBackToUser(t *testing.T) {
	s := Student{User: &User{FirstName: "Ali", LastName: "Valiyev"}}
	assert.Equal(t, "Ali Valiyev", s.FullName())
	s.FirstName = "Vali"
	assert.Equal(t, "Vali", s.FullName())
}

func TestStudentUpdateUnassignsGroupWithNull(t *testing.T) {
	payload, err := json.Marshal(StudentUpdate{GroupID: &NullableID{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"group_id":null}`, string(payload))

	payload, err = json.Marshal(StudentUpdate{GroupID: &NullableID{ID: 7, Valid: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"group_id":7}`, string(payload))

	payload, err = json.Marshal(StudentUpdate{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(payload))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StudentGraduated.Valid())
	assert.False(t, StudentStatus("left").Valid())
	assert.True(t, PaymentOverdue.Valid())
	assert.False(t, PaymentStatus("free").Valid())
	assert.True(t, AttendanceLate.Valid())
	assert.False(t, AttendanceStatus("excused").Valid())
}

func TestSummarizeAttendance(t *testing.T) {
	records := []AttendanceRecord{
		{Status: AttendancePresent}, {Status: AttendancePresent}, {Status: AttendancePresent},
		{Status: AttendanceAbsent}, {Status: AttendanceLate}, {Status: AttendancePresent},
	}
	s := SummarizeAttendance(records)
	assert.Equal(t, AttendanceSummary{Total: 6, Present: 4, Absent: 1, Late: 1, Percent: 67, Level: LevelWarning}, s)

	empty := SummarizeAttendance(nil)
	assert.Equal(t, 0, empty.Percent)
	assert.Equal(t, LevelCritical, empty.Level)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelGood, LevelFor(80))
	assert.Equal(t, LevelWarning, LevelFor(79))
	assert.Equal(t, LevelWarning, LevelFor(60))
	assert.Equal(t, LevelCritical, LevelFor(59))
}

func TestStudentsQueryMatches(t *testing.T) {
	group := int64(3)
	username := "ali_v"
	s := Student{FirstName: "Ali", LastName: "Valiyev", Username: &username, GroupID: &group}

	assert.True(t, StudentsQuery{}.Matches(s))
	assert.True(t, StudentsQuery{GroupID: 3, Search: "VALI"}.Matches(s))
	assert.True(t, StudentsQuery{Search: "ali_v"}.Matches(s))
	assert.False(t, StudentsQuery{GroupID: 4}.Matches(s))
	assert.False(t, StudentsQuery{Search: "karim"}.Matches(s))
	assert.False(t, StudentsQuery{GroupID: 3}.Matches(Student{FirstName: "No group"}))
}
