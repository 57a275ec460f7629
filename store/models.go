package store

import "time"

// User is a registered worker identified by a WhatsApp phone number.
type User struct {
	UserID    string    `db:"user_id"`
	FullName  string    `db:"full_name"`
	TZ        string    `db:"tz"`
	CreatedAt time.Time `db:"created_at"`
}

// RefItem is an activity or location reference row.
type RefItem struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Grp  string `db:"grp"`
}

// Report is one logged unit of work.
type Report struct {
	ID          int64     `db:"id"`
	CreatedAt   time.Time `db:"created_at"`
	UserID      string    `db:"user_id"`
	RegName     string    `db:"reg_name"`
	Location    string    `db:"location"`
	LocationGrp string    `db:"location_grp"`
	Activity    string    `db:"activity"`
	ActivityGrp string    `db:"activity_grp"`
	WorkDate    time.Time `db:"work_date"`
	Hours       int       `db:"hours"`
}

// TodayStat is one aggregated row of today's work across all users.
type TodayStat struct {
	UserID   string  `db:"user_id"`
	FullName *string `db:"full_name"`
	Location string  `db:"location"`
	Activity string  `db:"activity"`
	Hours    int     `db:"hours"`
}

// UserRangeStat aggregates one user's work per date, location and activity.
type UserRangeStat struct {
	WorkDate time.Time `db:"work_date"`
	Location string    `db:"location"`
	Activity string    `db:"activity"`
	Hours    int       `db:"hours"`
}

// RangeStat aggregates all users' work per date, location and activity.
type RangeStat struct {
	FullName *string   `db:"full_name"`
	WorkDate time.Time `db:"work_date"`
	Location string    `db:"location"`
	Activity string    `db:"activity"`
	Hours    int       `db:"hours"`
}

// UnexportedReport is a report row awaiting workbook export.
type UnexportedReport struct {
	ID       int64     `db:"id"`
	WorkDate time.Time `db:"work_date"`
	RegName  string    `db:"reg_name"`
	Location string    `db:"location"`
	Activity string    `db:"activity"`
	Hours    int       `db:"hours"`
}

// MonthlySheet is a monthly export destination workbook.
type MonthlySheet struct {
	ID        int64     `db:"id"`
	Year      int       `db:"year"`
	Month     int       `db:"month"`
	Workbook  string    `db:"workbook"`
	SheetURL  string    `db:"sheet_url"`
	CreatedAt time.Time `db:"created_at"`
}

// ExportRecord marks one report row as written to a workbook.
type ExportRecord struct {
	ReportID  int64
	Workbook  string
	SheetName string
	RowNumber int
}
