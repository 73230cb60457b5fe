// Package settlement считает месячный отчёт инструктора по завершённым занятиям.
package settlement

import (
	"sort"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
)

// Window - календарный месяц, обе границы включительно
type Window struct {
	InstructorID uuid.UUID
	Year         int
	Month        time.Month
	First        time.Time // 00:00 первого дня в часовом поясе студии
	Last         time.Time // 00:00 последнего дня в часовом поясе студии
}

// NewWindow строит окно месяца в часовом поясе loc
func NewWindow(instructorID uuid.UUID, year int, month time.Month, loc *time.Location) Window {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Window{
		InstructorID: instructorID,
		Year:         year,
		Month:        month,
		First:        first,
		Last:         first.AddDate(0, 1, -1),
	}
}

// Contains сравнивает календарные даты, а не моменты времени:
// дата занятия берётся как есть, без перевода между часовыми поясами.
func (w Window) Contains(date time.Time) bool {
	y, m, _ := date.Date()
	return y == w.Year && m == w.Month
}

type Bucket struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type MemberSettlement struct {
	MemberID       int64    `json:"member_id"`
	MemberName     string   `json:"member_name"`
	PerLessonType  []Bucket `json:"per_lesson_type"`
	PerPaymentType []Bucket `json:"per_payment_type"`
	TotalCount     int      `json:"total_count"`
}

type Report struct {
	InstructorID uuid.UUID          `json:"instructor_id"`
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	TotalCount   int                `json:"total_count"`
	PerMember    []MemberSettlement `json:"per_member"`
}

type memberAcc struct {
	id          int64
	name        string
	lessonTypes map[string]int
	payTypes    map[string]int
	total       int
}

// Aggregate группирует завершённые занятия окна по участникам.
// Занятие с несколькими участниками засчитывается каждому из них один раз.
func Aggregate(w Window, lessons []*model.LessonRecord) Report {
	report := Report{
		InstructorID: w.InstructorID,
		Year:         w.Year,
		Month:        int(w.Month),
		PerMember:    []MemberSettlement{},
	}

	byMember := make(map[int64]*memberAcc)
	for _, lesson := range lessons {
		if lesson == nil || !lesson.IsCompleted() {
			continue
		}
		if lesson.InstructorID != w.InstructorID || !w.Contains(lesson.Date) {
			continue
		}

		seen := make(map[int64]bool, len(lesson.Members))
		for _, m := range lesson.Members {
			// один участник не может дважды попасть в одно занятие
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true

			acc, ok := byMember[m.ID]
			if !ok {
				acc = &memberAcc{
					id:          m.ID,
					name:        m.Name,
					lessonTypes: make(map[string]int),
					payTypes:    make(map[string]int),
				}
				byMember[m.ID] = acc
			}
			acc.lessonTypes[lesson.LessonType]++
			acc.payTypes[lesson.PaymentType]++
			acc.total++
		}
	}

	for _, acc := range byMember {
		report.PerMember = append(report.PerMember, MemberSettlement{
			MemberID:       acc.id,
			MemberName:     acc.name,
			PerLessonType:  buckets(acc.lessonTypes),
			PerPaymentType: buckets(acc.payTypes),
			TotalCount:     acc.total,
		})
		report.TotalCount += acc.total
	}

	sort.Slice(report.PerMember, func(i, j int) bool {
		a, b := report.PerMember[i], report.PerMember[j]
		if a.MemberName != b.MemberName {
			return a.MemberName < b.MemberName
		}
		return a.MemberID < b.MemberID
	})

	return report
}

func buckets(counts map[string]int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for t, c := range counts {
		out = append(out, Bucket{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
