package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-client/internal/api"
	"github.com/noah-isme/attendance-client/internal/models"
	"github.com/noah-isme/attendance-client/internal/service"
	"github.com/noah-isme/attendance-client/pkg/apiclient"
	"github.com/noah-isme/attendance-client/pkg/config"
	"github.com/noah-isme/attendance-client/pkg/session"
	"github.com/noah-isme/attendance-client/pkg/storage"
)

var errUsage = errors.New("usage")

type app struct {
	out       io.Writer
	json      bool
	session   *session.Session
	facades   *api.API
	sizes     api.PageSizes
	auth      *service.AuthService
	dashboard *service.DashboardService
	exporter  *service.ExportService
	validate  *validator.Validate
}

func newApp(cfg *config.Config, sess *session.Session, logr *zap.Logger, out io.Writer) (*app, error) {
	client, err := apiclient.FromConfig(cfg.API, sess, logr, nil)
	if err != nil {
		return nil, err
	}
	sizes := api.PageSizesFromConfig(cfg.PageSizes)
	facades := api.New(client, sizes)
	validate := validator.New()
	return &app{
		out:       out,
		session:   sess,
		facades:   facades,
		sizes:     sizes,
		auth:      service.NewAuthService(facades.Auth, sess, validate, logr),
		dashboard: service.NewDashboardService(facades.Admin, logr, service.DashboardServiceConfig{PageSizes: sizes}),
		exporter:  service.NewExportService(facades.Admin, nil, logr, service.ExportConfig{}),
		validate:  validate,
	}, nil
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.auth.Logout()
		fmt.Fprintln(a.out, "logged out")
		return nil
	case "whoami":
		return a.whoami()
	case "stats":
		return a.stats(ctx)
	case "students":
		return a.students(ctx, args)
	case "student":
		if verb, rest, ok := action(args); ok {
			return a.manageStudent(ctx, verb, rest)
		}
		return a.student(ctx, args)
	case "groups":
		return a.groups(ctx, args)
	case "group":
		verb, rest, _ := action(args)
		return a.manageGroup(ctx, verb, rest)
	case "teachers":
		return a.teachers(ctx, args)
	case "teacher":
		verb, rest, _ := action(args)
		return a.manageTeacher(ctx, verb, rest)
	case "me":
		verb, _, _ := action(args)
		return a.me(ctx, verb)
	case "teach":
		verb, rest, _ := action(args)
		return a.teach(ctx, verb, rest)
	case "history":
		return a.history(ctx, args)
	case "export":
		return a.export(ctx, args)
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}

// action splits "create --name x" into its verb and the verb's arguments.
// ok is false when the first argument is not a word, e.g. "student 42".
func action(args []string) (verb string, rest []string, ok bool) {
	if len(args) == 0 {
		return "", nil, false
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err == nil || strings.HasPrefix(args[0], "-") {
		return "", nil, false
	}
	return args[0], args[1:], true
}

func newFlags(name string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlags("login", a.out)
	initData := fs.String("init-data", os.Getenv("TELEGRAM_INIT_DATA"), "Telegram Mini App init data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.auth.Login(ctx, *initData)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(res.User)
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", res.User.FullName(), res.User.Role)
	if !a.session.Persistent() {
		fmt.Fprintln(a.out, "note: session is not persisted")
	}
	return nil
}

func (a *app) whoami() error {
	user, err := a.auth.CurrentUser()
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(user)
	}
	fmt.Fprintf(a.out, "%s\nid: %d\nrole: %s\n", user.FullName(), user.ID, user.Role)
	if exp, ok := a.session.ExpiresAt(); ok {
		fmt.Fprintf(a.out, "token expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func (a *app) stats(ctx context.Context) error {
	stats, err := a.dashboard.Overview(ctx)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(stats)
	}
	w := a.table()
	fmt.Fprintf(w, "Teachers\t%d\n", stats.TotalTeachers)
	fmt.Fprintf(w, "Students\t%d\n", stats.TotalStudents)
	fmt.Fprintf(w, "Groups\t%d\n", stats.TotalGroups)
	fmt.Fprintf(w, "Attendance today\t%.0f%%\n", stats.TodayAttendanceRate)
	return w.Flush()
}

func (a *app) students(ctx context.Context, args []string) error {
	fs := newFlags("students", a.out)
	var q models.StudentsQuery
	fs.IntVar(&q.Page, "page", 1, "page number")
	fs.IntVar(&q.Size, "size", 0, "page size")
	fs.Int64Var(&q.GroupID, "group", 0, "only students of this group")
	status := fs.String("status", "", "student status")
	payment := fs.String("payment", "", "payment status")
	fs.StringVar(&q.Search, "search", "", "name or username contains")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q.Status = models.StudentStatus(*status)
	q.PaymentStatus = models.PaymentStatus(*payment)
	if (q.Status != "" && !q.Status.Valid()) || (q.PaymentStatus != "" && !q.PaymentStatus.Valid()) {
		return fmt.Errorf("unknown status filter")
	}

	screen, err := a.dashboard.StudentsScreen(ctx, q)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(screen)
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tGROUP\tSTATUS\tPAYMENT")
	for _, s := range screen.Students {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.FullName(), s.GroupName, s.Status, s.PaymentStatus)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d of %d (%d total)\n", screen.Page, screen.Pages, screen.Total)
	return nil
}

func (a *app) student(ctx context.Context, args []string) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	profile, err := a.dashboard.StudentProfile(ctx, id)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(profile)
	}
	s := profile.Summary
	fmt.Fprintf(a.out, "%s (#%d) %s, %s\n", profile.Student.FullName(), profile.Student.ID, profile.Student.Status, profile.Student.PaymentStatus)
	fmt.Fprintf(a.out, "attendance: %d%% [%s] present %d, late %d, absent %d of %d\n", s.Percent, s.Level, s.Present, s.Late, s.Absent, s.Total)
	w := a.table()
	fmt.Fprintln(w, "DATE\tSTATUS\tNOTE")
	for _, r := range profile.Attendance {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Date, r.Status, models.StringValue(r.Note))
	}
	return w.Flush()
}

func (a *app) groups(ctx context.Context, args []string) error {
	fs := newFlags("groups", a.out)
	page := fs.Int("page", 1, "page number")
	id := fs.Int64("id", 0, "show one group with its students")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id > 0 {
		return a.group(ctx, *id)
	}
	screen, err := a.dashboard.GroupsScreen(ctx, *page)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(screen)
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tTEACHER\tDAYS\tTIME\tSTUDENTS")
	for _, g := range screen.Groups {
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%s\t%d/%d\n", g.ID, g.Name, g.TeacherName, g.Days(), g.ClassTime, g.StudentCount, g.MaxStudents)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d of %d (%d total)\n", screen.Page, screen.Pages, screen.Total)
	return nil
}

func (a *app) group(ctx context.Context, id int64) error {
	profile, err := a.dashboard.GroupProfile(ctx, id)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(profile)
	}
	g := profile.Group
	fmt.Fprintf(a.out, "%s (#%d) teacher: %s\ndays: %v time: %s, %d/%d students\n", g.Name, g.ID, profile.TeacherName, g.Days(), g.ClassTime, profile.Total, g.MaxStudents)
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPAYMENT")
	for _, s := range profile.Students {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.FullName(), s.Status, s.PaymentStatus)
	}
	return w.Flush()
}

func (a *app) teachers(ctx context.Context, args []string) error {
	fs := newFlags("teachers", a.out)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 0, "page size")
	id := fs.Int64("id", 0, "show one teacher with their groups")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id > 0 {
		profile, err := a.dashboard.TeacherProfile(ctx, *id)
		if err != nil {
			return err
		}
		if a.json {
			return a.printJSON(profile)
		}
		fmt.Fprintf(a.out, "%s (#%d) %s\n", profile.Teacher.FullName(), profile.Teacher.ID, models.StringValue(profile.Teacher.Specialization))
		w := a.table()
		fmt.Fprintln(w, "GROUP\tNAME\tSTUDENTS")
		for _, g := range profile.Groups {
			fmt.Fprintf(w, "%d\t%s\t%d\n", g.ID, g.Name, g.StudentCount)
		}
		return w.Flush()
	}

	res, err := a.facades.Admin.GetTeachers(ctx, *page, *size)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(res)
	}
	effective := *size
	if effective <= 0 {
		effective = a.sizes.Teachers
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tSPECIALIZATION\tPHONE")
	for _, t := range res.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.FullName(), models.StringValue(t.Specialization), models.StringValue(t.Phone))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d of %d (%d total)\n", *page, res.Pages(effective), res.Total)
	return nil
}

func (a *app) history(ctx context.Context, args []string) error {
	fs := newFlags("history", a.out)
	group := fs.Int64("group", 0, "only this group")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 0, "page size")
	mine := fs.Bool("mine", false, "the logged-in student's own attendance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		res *models.PaginatedResponse[models.AttendanceRecord]
		err error
	)
	if *mine {
		res, err = a.facades.Student.GetMyAttendance(ctx, *page, *size)
	} else {
		res, err = a.facades.Teacher.GetAttendanceHistory(ctx, *group, *page, *size)
	}
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(res)
	}
	w := a.table()
	fmt.Fprintln(w, "DATE\tSTUDENT\tSTATUS\tNOTE")
	for _, r := range res.Items {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", r.Date, r.StudentID, r.Status, models.StringValue(r.Note))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d records\n", res.Total)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := newFlags("export", a.out)
	format := fs.String("format", "csv", "csv or pdf")
	outDir := fs.String("out", ".", "directory to write the file to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := singleID(fs.Args())
	if err != nil {
		return err
	}

	res, err := a.exporter.StudentAttendance(ctx, id, *format)
	if err != nil {
		return err
	}
	dir, err := storage.NewLocalStorage(*outDir)
	if err != nil {
		return err
	}
	path, err := dir.Save(res.Filename, res.Data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%d rows)\n", path, res.Rows)
	return nil
}

func singleID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one id: %w", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
