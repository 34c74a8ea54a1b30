package models

import "time"

// Course is one of the fixed grade groupings a child can be enrolled in.
type Course string

const (
	CoursePrekinder Course = "Prekínder"
	CourseKinder    Course = "Kínder"
	CourseBasico1   Course = "1° Básico"
	CourseBasico2   Course = "2° Básico"
	CourseBasico3   Course = "3° Básico"
	CourseBasico4   Course = "4° Básico"
	CourseBasico5   Course = "5° Básico"
	CourseBasico6   Course = "6° Básico"
	CourseBasico7   Course = "7° Básico"
	CourseBasico8   Course = "8° Básico"
)

var courseCatalogue = []Course{
	CoursePrekinder, CourseKinder,
	CourseBasico1, CourseBasico2, CourseBasico3,
	CourseBasico4, CourseBasico5, CourseBasico6,
	CourseBasico7, CourseBasico8,
}

// Courses returns the course catalogue in enrollment order.
func Courses() []Course {
	out := make([]Course, len(courseCatalogue))
	copy(out, courseCatalogue)
	return out
}

// Valid returns true when the course belongs to the catalogue.
func (c Course) Valid() bool {
	for _, known := range courseCatalogue {
		if c == known {
			return true
		}
	}
	return false
}

// Child is a roster entry.
type Child struct {
	ID          string    `db:"id" json:"id" bson:"_id"`
	FirstName   string    `db:"first_name" json:"first_name" bson:"firstName"`
	LastName    string    `db:"last_name" json:"last_name" bson:"lastName"`
	Course      Course    `db:"course" json:"course" bson:"course"`
	CheckInCode *string   `db:"check_in_code" json:"check_in_code,omitempty" bson:"checkInCode,omitempty"`
	School      string    `db:"school" json:"school,omitempty" bson:"school,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at" bson:"createdAt"`
}

// Code returns the value used for code-based check-in, falling back to the id.
func (c Child) Code() string {
	if c.CheckInCode != nil && *c.CheckInCode != "" {
		return *c.CheckInCode
	}
	return c.ID
}

// RosterEntry joins a child with its presence on the date a view was built for.
type RosterEntry struct {
	Child   Child `json:"child"`
	Present bool  `json:"present"`
}
