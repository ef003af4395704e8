package model

import "time"

type Subject struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CourseCount int       `db:"course_count" json:"course_count"`
	LessonCount int       `db:"lesson_count" json:"lesson_count"`
	MaxCapacity int       `db:"max_capacity" json:"max_capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
