package model

// Student mirrors the reporting schema the pipeline queries. Rows are loaded
// by an external ingestion job, so this service only ever reads them.
type Student struct {
	RollNo string   `gorm:"type:text;primaryKey;column:roll_no"`
	Name   string   `gorm:"type:text;not null"`
	Batch  string   `gorm:"type:text"`
	Branch string   `gorm:"type:text"`
	CgpaS1 *float64 `gorm:"column:cgpa_s1"`
	CgpaS2 *float64 `gorm:"column:cgpa_s2"`
}

func (Student) TableName() string {
	return "students"
}

// AttendanceAndMarksS1 holds per-subject semester 1 records.
type AttendanceAndMarksS1 struct {
	Id                   uint     `gorm:"primaryKey;autoIncrement"`
	RollNo               string   `gorm:"type:text;not null;index;column:roll_no"`
	Subject              string   `gorm:"type:text;not null"`
	Attended             *int     `gorm:"column:attended"`
	Held                 *int     `gorm:"column:held"`
	AttendancePercentage *float64 `gorm:"column:attendance_percentage"`
	Grade                *string  `gorm:"type:text"`
	Ratings              *string  `gorm:"type:text"`
	Status               *string  `gorm:"type:text"`
}

func (AttendanceAndMarksS1) TableName() string {
	return "attendance_and_marks_s1"
}

// AttendanceAndMarksS2 holds per-subject semester 2 records.
type AttendanceAndMarksS2 struct {
	Id                   uint     `gorm:"primaryKey;autoIncrement"`
	RollNo               string   `gorm:"type:text;not null;index;column:roll_no"`
	Subject              string   `gorm:"type:text;not null"`
	Attended             *int     `gorm:"column:attended"`
	Held                 *int     `gorm:"column:held"`
	AttendancePercentage *float64 `gorm:"column:attendance_percentage"`
	Grade                *string  `gorm:"type:text"`
	Ratings              *string  `gorm:"type:text"`
	Status               *string  `gorm:"type:text"`
}

func (AttendanceAndMarksS2) TableName() string {
	return "attendance_and_marks_s2"
}
