package repository

import (
	"testing"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldLessonRows(t *testing.T) {
	instructor := uuid.New()
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	row := func(lessonID int64, at string, memberID int64, name string) lessonRow {
		return lessonRow{
			lesson: model.LessonRecord{
				ID:           lessonID,
				Date:         day,
				Time:         at,
				InstructorID: instructor,
				LessonType:   "group",
				PaymentType:  "regular",
			},
			status: string(model.LessonStatusCompleted),
			member: model.LessonMember{ID: memberID, Name: name},
		}
	}

	cases := []struct {
		name    string
		rows    []lessonRow
		lessons []int64
		members [][]int64
	}{
		{
			name: "empty",
		},
		{
			name:    "single member",
			rows:    []lessonRow{row(1, "10:00", 7, "Kim")},
			lessons: []int64{1},
			members: [][]int64{{7}},
		},
		{
			name: "group lesson",
			rows: []lessonRow{
				row(1, "10:00", 7, "Kim"),
				row(1, "10:00", 8, "Lee"),
				row(1, "10:00", 9, "Park"),
			},
			lessons: []int64{1},
			members: [][]int64{{7, 8, 9}},
		},
		{
			name: "adjacent lessons",
			rows: []lessonRow{
				row(1, "10:00", 7, "Kim"),
				row(1, "10:00", 8, "Lee"),
				row(2, "11:00", 8, "Lee"),
				row(3, "12:00", 7, "Kim"),
				row(3, "12:00", 9, "Park"),
			},
			lessons: []int64{1, 2, 3},
			members: [][]int64{{7, 8}, {8}, {7, 9}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := foldLessonRows(tc.rows)
			require.Len(t, got, len(tc.lessons))

			for i, lesson := range got {
				assert.Equal(t, tc.lessons[i], lesson.ID)
				assert.Equal(t, model.LessonStatusCompleted, lesson.Status)
				assert.Equal(t, instructor, lesson.InstructorID)

				var ids []int64
				for _, m := range lesson.Members {
					ids = append(ids, m.ID)
				}
				assert.Equal(t, tc.members[i], ids)
			}
		})
	}
}

func TestFoldLessonRowsKeepsLessonFields(t *testing.T) {
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	rows := []lessonRow{
		{
			lesson: model.LessonRecord{ID: 5, Date: day, Time: "19:30", LessonType: "duet", PaymentType: "coupon"},
			status: string(model.LessonStatusCompleted),
			member: model.LessonMember{ID: 1, Name: "Choi"},
		},
		{
			lesson: model.LessonRecord{ID: 5, Date: day, Time: "19:30", LessonType: "duet", PaymentType: "coupon"},
			status: string(model.LessonStatusCompleted),
			member: model.LessonMember{ID: 2, Name: "Jung"},
		},
	}

	got := foldLessonRows(rows)
	require.Len(t, got, 1)
	assert.Equal(t, day, got[0].Date)
	assert.Equal(t, "19:30", got[0].Time)
	assert.Equal(t, "duet", got[0].LessonType)
	assert.Equal(t, "coupon", got[0].PaymentType)
	assert.Equal(t, []model.LessonMember{{ID: 1, Name: "Choi"}, {ID: 2, Name: "Jung"}}, got[0].Members)
}

func TestCivilDate(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	in := time.Date(2025, time.March, 31, 23, 45, 0, 0, seoul)

	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), civilDate(in))
}
