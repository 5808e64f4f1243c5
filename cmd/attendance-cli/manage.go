package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/noah-isme/attendance-client/internal/models"
	appErrors "github.com/noah-isme/attendance-client/pkg/errors"
)

const dateLayout = "2006-01-02"

// check runs the payload's validate tags before anything reaches the backend.
func (a *app) check(payload interface{}, what string) error {
	if err := a.validate.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+what)
	}
	return nil
}

// optional helpers copy a flag into a request field only when it was set.
func optString(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetString(name)
	return &v
}

func optInt(fs *pflag.FlagSet, name string) *int {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetInt(name)
	return &v
}

func optInt64(fs *pflag.FlagSet, name string) *int64 {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetInt64(name)
	return &v
}

func optFloat(fs *pflag.FlagSet, name string) *float64 {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetFloat64(name)
	return &v
}

func anyChanged(fs *pflag.FlagSet) bool {
	changed := false
	fs.Visit(func(*pflag.Flag) { changed = true })
	return changed
}

func (a *app) deleted(what string, id int64) error {
	if a.json {
		return a.printJSON(map[string]interface{}{"deleted": what, "id": id})
	}
	fmt.Fprintf(a.out, "deleted %s %d\n", what, id)
	return nil
}

func studentFlags(fs *pflag.FlagSet) {
	fs.String("first-name", "", "first name")
	fs.String("last-name", "", "last name")
	fs.String("phone", "", "phone number")
	fs.Int64("group", 0, "group id")
	fs.String("parent-name", "", "parent name")
	fs.String("parent-phone", "", "parent phone")
	fs.String("address", "", "home address")
	fs.String("notes", "", "free-form notes")
	fs.Float64("fee", 0, "monthly fee")
	fs.Float64("discount", 0, "discount percent, 0 to 100")
}

func (a *app) manageStudent(ctx context.Context, verb string, args []string) error {
	switch verb {
	case "create":
		return a.createStudent(ctx, args)
	case "update":
		return a.updateStudent(ctx, args)
	case "delete":
		id, err := singleID(args)
		if err != nil {
			return err
		}
		if err := a.facades.Admin.DeleteStudent(ctx, id); err != nil {
			return err
		}
		return a.deleted("student", id)
	case "assign":
		return a.assignStudent(ctx, args)
	default:
		return fmt.Errorf("unknown student action %q: %w", verb, errUsage)
	}
}

func (a *app) createStudent(ctx context.Context, args []string) error {
	fs := newFlags("student create", a.out)
	telegramID := fs.Int64("telegram-id", 0, "Telegram user id")
	fs.String("username", "", "Telegram username")
	studentFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	first, _ := fs.GetString("first-name")
	last, _ := fs.GetString("last-name")
	req := models.StudentCreate{
		TelegramID:      *telegramID,
		FirstName:       first,
		LastName:        last,
		Username:        optString(fs, "username"),
		Phone:           optString(fs, "phone"),
		GroupID:         optInt64(fs, "group"),
		ParentName:      optString(fs, "parent-name"),
		ParentPhone:     optString(fs, "parent-phone"),
		Address:         optString(fs, "address"),
		Notes:           optString(fs, "notes"),
		MonthlyFee:      optFloat(fs, "fee"),
		DiscountPercent: optFloat(fs, "discount"),
	}
	if err := a.check(req, "student"); err != nil {
		return err
	}
	s, err := a.facades.Admin.CreateStudent(ctx, req)
	if err != nil {
		return err
	}
	return a.printStudent("created", s)
}

func (a *app) updateStudent(ctx context.Context, args []string) error {
	fs := newFlags("student update", a.out)
	studentFlags(fs)
	unassign := fs.Bool("unassign", false, "remove the student from their group")
	status := fs.String("status", "", "student status")
	payment := fs.String("payment", "", "payment status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := singleID(fs.Args())
	if err != nil {
		return err
	}
	if !anyChanged(fs) {
		return fmt.Errorf("nothing to update: %w", errUsage)
	}
	if *unassign && fs.Changed("group") {
		return fmt.Errorf("--group and --unassign are mutually exclusive: %w", errUsage)
	}

	req := models.StudentUpdate{
		FirstName:       optString(fs, "first-name"),
		LastName:        optString(fs, "last-name"),
		Phone:           optString(fs, "phone"),
		ParentName:      optString(fs, "parent-name"),
		ParentPhone:     optString(fs, "parent-phone"),
		Address:         optString(fs, "address"),
		Notes:           optString(fs, "notes"),
		MonthlyFee:      optFloat(fs, "fee"),
		DiscountPercent: optFloat(fs, "discount"),
	}
	switch {
	case *unassign:
		req.GroupID = &models.NullableID{}
	case fs.Changed("group"):
		group, _ := fs.GetInt64("group")
		req.GroupID = &models.NullableID{ID: group, Valid: true}
	}
	if fs.Changed("status") {
		st := models.StudentStatus(*status)
		req.Status = &st
	}
	if fs.Changed("payment") {
		ps := models.PaymentStatus(*payment)
		req.PaymentStatus = &ps
	}
	if err := a.check(req, "student"); err != nil {
		return err
	}
	s, err := a.facades.Admin.UpdateStudent(ctx, id, req)
	if err != nil {
		return err
	}
	return a.printStudent("updated", s)
}

func (a *app) assignStudent(ctx context.Context, args []string) error {
	fs := newFlags("student assign", a.out)
	group := fs.Int64("group", 0, "group id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := singleID(fs.Args())
	if err != nil {
		return err
	}
	if err := a.check(models.GroupAssignment{GroupID: *group}, "group assignment"); err != nil {
		return err
	}
	s, err := a.facades.Admin.AssignGroup(ctx, id, *group)
	if err != nil {
		return err
	}
	return a.printStudent("assigned", s)
}

func (a *app) printStudent(verb string, s *models.Student) error {
	if a.json {
		return a.printJSON(s)
	}
	fmt.Fprintf(a.out, "%s student %d: %s\n", verb, s.ID, s.FullName())
	return nil
}

func groupFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "group name")
	fs.Int64("teacher", 0, "teacher id")
	fs.String("description", "", "description")
	fs.String("course", "", "course name")
	fs.String("level", "", "level")
	fs.String("days", "", "schedule days, e.g. 1,3,5 (0 is Sunday)")
	fs.String("time", "", "class time, e.g. 18:00")
	fs.Int("max", 0, "maximum students")
}

func (a *app) manageGroup(ctx context.Context, verb string, args []string) error {
	switch verb {
	case "create":
		fs := newFlags("group create", a.out)
		groupFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		name, _ := fs.GetString("name")
		teacher, _ := fs.GetInt64("teacher")
		req := models.GroupCreate{
			Name:         name,
			TeacherID:    teacher,
			Description:  optString(fs, "description"),
			CourseName:   optString(fs, "course"),
			Level:        optString(fs, "level"),
			ScheduleDays: optString(fs, "days"),
			ClassTime:    optString(fs, "time"),
			MaxStudents:  optInt(fs, "max"),
		}
		if err := a.check(req, "group"); err != nil {
			return err
		}
		g, err := a.facades.Admin.CreateGroup(ctx, req)
		if err != nil {
			return err
		}
		return a.printGroup("created", g)
	case "update":
		fs := newFlags("group update", a.out)
		groupFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := singleID(fs.Args())
		if err != nil {
			return err
		}
		if !anyChanged(fs) {
			return fmt.Errorf("nothing to update: %w", errUsage)
		}
		req := models.GroupUpdate{
			Name:         optString(fs, "name"),
			TeacherID:    optInt64(fs, "teacher"),
			Description:  optString(fs, "description"),
			CourseName:   optString(fs, "course"),
			Level:        optString(fs, "level"),
			ScheduleDays: optString(fs, "days"),
			ClassTime:    optString(fs, "time"),
			MaxStudents:  optInt(fs, "max"),
		}
		if err := a.check(req, "group"); err != nil {
			return err
		}
		g, err := a.facades.Admin.UpdateGroup(ctx, id, req)
		if err != nil {
			return err
		}
		return a.printGroup("updated", g)
	case "delete":
		id, err := singleID(args)
		if err != nil {
			return err
		}
		if err := a.facades.Admin.DeleteGroup(ctx, id); err != nil {
			return err
		}
		return a.deleted("group", id)
	default:
		return fmt.Errorf("unknown group action %q: %w", verb, errUsage)
	}
}

func (a *app) printGroup(verb string, g *models.Group) error {
	if a.json {
		return a.printJSON(g)
	}
	fmt.Fprintf(a.out, "%s group %d: %s\n", verb, g.ID, g.Name)
	return nil
}

func teacherFlags(fs *pflag.FlagSet) {
	fs.String("first-name", "", "first name")
	fs.String("last-name", "", "last name")
	fs.String("phone", "", "phone number")
	fs.String("username", "", "Telegram username")
	fs.String("specialization", "", "subject or specialization")
	fs.Int("experience", 0, "years of experience")
	fs.String("bio", "", "short biography")
	fs.Float64("salary", 0, "salary")
}

func (a *app) manageTeacher(ctx context.Context, verb string, args []string) error {
	switch verb {
	case "create":
		fs := newFlags("teacher create", a.out)
		telegramID := fs.Int64("telegram-id", 0, "Telegram user id")
		teacherFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		first, _ := fs.GetString("first-name")
		last, _ := fs.GetString("last-name")
		req := models.TeacherCreate{
			TelegramID:      *telegramID,
			FirstName:       first,
			LastName:        last,
			Phone:           optString(fs, "phone"),
			Username:        optString(fs, "username"),
			Specialization:  optString(fs, "specialization"),
			ExperienceYears: optInt(fs, "experience"),
			Bio:             optString(fs, "bio"),
			Salary:          optFloat(fs, "salary"),
		}
		if err := a.check(req, "teacher"); err != nil {
			return err
		}
		t, err := a.facades.Admin.CreateTeacher(ctx, req)
		if err != nil {
			return err
		}
		return a.printTeacher("created", t)
	case "update":
		fs := newFlags("teacher update", a.out)
		teacherFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := singleID(fs.Args())
		if err != nil {
			return err
		}
		if !anyChanged(fs) {
			return fmt.Errorf("nothing to update: %w", errUsage)
		}
		req := models.TeacherUpdate{
			FirstName:       optString(fs, "first-name"),
			LastName:        optString(fs, "last-name"),
			Phone:           optString(fs, "phone"),
			Username:        optString(fs, "username"),
			Specialization:  optString(fs, "specialization"),
			ExperienceYears: optInt(fs, "experience"),
			Bio:             optString(fs, "bio"),
			Salary:          optFloat(fs, "salary"),
		}
		if err := a.check(req, "teacher"); err != nil {
			return err
		}
		t, err := a.facades.Admin.UpdateTeacher(ctx, id, req)
		if err != nil {
			return err
		}
		return a.printTeacher("updated", t)
	case "delete":
		id, err := singleID(args)
		if err != nil {
			return err
		}
		if err := a.facades.Admin.DeleteTeacher(ctx, id); err != nil {
			return err
		}
		return a.deleted("teacher", id)
	default:
		return fmt.Errorf("unknown teacher action %q: %w", verb, errUsage)
	}
}

func (a *app) printTeacher(verb string, t *models.User) error {
	if a.json {
		return a.printJSON(t)
	}
	fmt.Fprintf(a.out, "%s teacher %d: %s\n", verb, t.ID, t.FullName())
	return nil
}

// me covers the logged-in student's own screens.
func (a *app) me(ctx context.Context, verb string) error {
	switch verb {
	case "stats":
		stats, err := a.facades.Student.GetMyStats(ctx)
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(stats)
		}
		w := a.table()
		fmt.Fprintf(w, "Lessons\t%d\n", stats.Total)
		fmt.Fprintf(w, "Present\t%d\n", stats.Present)
		fmt.Fprintf(w, "Late\t%d\n", stats.Late)
		fmt.Fprintf(w, "Absent\t%d\n", stats.Absent)
		fmt.Fprintf(w, "Attendance\t%.0f%%\n", stats.Percentage)
		return w.Flush()
	case "group":
		g, err := a.facades.Student.GetMyGroup(ctx)
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(g)
		}
		fmt.Fprintf(a.out, "%s (#%d)\ndays: %v\ntime: %s\n", g.Name, g.ID, g.Days(), g.ClassTime)
		return nil
	default:
		return fmt.Errorf("unknown me action %q: %w", verb, errUsage)
	}
}

// teach covers the logged-in teacher's groups and attendance marking.
func (a *app) teach(ctx context.Context, verb string, args []string) error {
	switch verb {
	case "groups":
		groups, err := a.facades.Teacher.GetMyGroups(ctx)
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(groups)
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tNAME\tDAYS\tTIME\tSTUDENTS")
		for _, g := range groups {
			fmt.Fprintf(w, "%d\t%s\t%v\t%s\t%d\n", g.ID, g.Name, g.Days(), g.ClassTime, g.StudentCount)
		}
		return w.Flush()
	case "students":
		id, err := singleID(args)
		if err != nil {
			return err
		}
		students, err := a.facades.Teacher.GetGroupStudents(ctx, id)
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(students)
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tNAME\tSTATUS")
		for _, s := range students {
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.FullName(), s.Status)
		}
		return w.Flush()
	case "check":
		fs := newFlags("teach check", a.out)
		group := fs.Int64("group", 0, "group id")
		date := fs.String("date", time.Now().Format(dateLayout), "lesson date, YYYY-MM-DD")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *group <= 0 {
			return fmt.Errorf("--group is required: %w", errUsage)
		}
		records, err := a.facades.Teacher.CheckTodayAttendance(ctx, *group, *date)
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(records)
		}
		if len(records) == 0 {
			fmt.Fprintf(a.out, "no attendance submitted for group %d on %s\n", *group, *date)
			return nil
		}
		w := a.table()
		fmt.Fprintln(w, "STUDENT\tSTATUS\tNOTE")
		for _, r := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.StudentID, r.Status, models.StringValue(r.Note))
		}
		return w.Flush()
	case "submit":
		return a.submitAttendance(ctx, args)
	default:
		return fmt.Errorf("unknown teach action %q: %w", verb, errUsage)
	}
}

// submitAttendance takes marks as STUDENT_ID=STATUS[:NOTE] arguments.
func (a *app) submitAttendance(ctx context.Context, args []string) error {
	fs := newFlags("teach submit", a.out)
	group := fs.Int64("group", 0, "group id")
	date := fs.String("date", time.Now().Format(dateLayout), "lesson date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := time.Parse(dateLayout, *date); err != nil {
		return fmt.Errorf("invalid date %q: %w", *date, errUsage)
	}
	marks, err := parseMarks(fs.Args())
	if err != nil {
		return err
	}
	submission := models.AttendanceSubmission{GroupID: *group, Date: *date, Records: marks}
	if err := a.check(submission, "attendance"); err != nil {
		return err
	}
	if err := a.facades.Teacher.SubmitAttendance(ctx, *group, *date, marks); err != nil {
		return err
	}
	if a.json {
		return a.printJSON(submission)
	}
	fmt.Fprintf(a.out, "submitted %d marks for group %d on %s\n", len(marks), *group, *date)
	return nil
}

func parseMarks(args []string) ([]models.AttendanceMark, error) {
	marks := make([]models.AttendanceMark, 0, len(args))
	for _, arg := range args {
		idPart, rest, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("mark %q is not STUDENT_ID=STATUS: %w", arg, errUsage)
		}
		id, err := strconv.ParseInt(idPart, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid student id in %q", arg)
		}
		status, note, _ := strings.Cut(rest, ":")
		marks = append(marks, models.AttendanceMark{StudentID: id, Status: models.AttendanceStatus(status), Note: note})
	}
	return marks, nil
}
