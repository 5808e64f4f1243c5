package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/attendance-client/internal/api"
	"github.com/noah-isme/attendance-client/internal/models"
)

type adminReader interface {
	GetStats(ctx context.Context) (*models.AdminStats, error)
	GetStudents(ctx context.Context, params api.StudentListParams) (*models.PaginatedResponse[models.Student], error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	GetStudentAttendance(ctx context.Context, studentID int64, page, size int) (*models.PaginatedResponse[models.AttendanceRecord], error)
	GetTeacher(ctx context.Context, id int64) (*models.User, error)
	GetTeachers(ctx context.Context, page, size int) (*models.PaginatedResponse[models.User], error)
	GetGroups(ctx context.Context, page, size int) (*models.PaginatedResponse[models.Group], error)
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
}

// DashboardServiceConfig tunes screen compositions.
type DashboardServiceConfig struct {
	PageSizes api.PageSizes
	// LookupSize is the page size used for name lookup tables (groups for
	// the students screen, teachers for the groups screen).
	LookupSize int
}

// DashboardService composes facade calls into admin screen payloads.
type DashboardService struct {
	admin  adminReader
	logger *zap.Logger
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(admin adminReader, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSizes == (api.PageSizes{}) {
		cfg.PageSizes = api.DefaultPageSizes()
	}
	if cfg.LookupSize <= 0 {
		cfg.LookupSize = 100
	}
	return &DashboardService{admin: admin, logger: logger, cfg: cfg}
}

// Overview returns the admin counters.
func (s *DashboardService) Overview(ctx context.Context) (*models.AdminStats, error) {
	stats, err := s.admin.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// StudentsScreen loads a students page and the group lookup concurrently,
// then applies the group and search filters to the page.
func (s *DashboardService) StudentsScreen(ctx context.Context, q models.StudentsQuery) (*models.StudentsScreen, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 {
		q.Size = s.cfg.PageSizes.Students
	}

	var (
		students *models.PaginatedResponse[models.Student]
		groups   *models.PaginatedResponse[models.Group]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = s.admin.GetStudents(gctx, api.StudentListParams{
			Page:          q.Page,
			Size:          q.Size,
			Status:        q.Status,
			PaymentStatus: q.PaymentStatus,
		})
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.admin.GetGroups(gctx, 1, s.cfg.LookupSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(groups.Items))
	for _, grp := range groups.Items {
		names[grp.ID] = grp.Name
	}

	rows := make([]models.StudentRow, 0, len(students.Items))
	for _, st := range students.Items {
		if !q.Matches(st) {
			continue
		}
		row := models.StudentRow{Student: st}
		if st.GroupID != nil {
			row.GroupName = names[*st.GroupID]
		}
		rows = append(rows, row)
	}

	return &models.StudentsScreen{
		Students: rows,
		Groups:   groups.Items,
		Total:    students.Total,
		Page:     q.Page,
		Size:     q.Size,
		Pages:    students.Pages(q.Size),
	}, nil
}

// StudentProfile loads a student with its first attendance page and summary.
func (s *DashboardService) StudentProfile(ctx context.Context, id int64) (*models.StudentProfile, error) {
	var (
		student    *models.Student
		attendance *models.PaginatedResponse[models.AttendanceRecord]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		student, err = s.admin.GetStudent(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		attendance, err = s.admin.GetStudentAttendance(gctx, id, 1, s.cfg.PageSizes.StudentAttendance)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &models.StudentProfile{
		Student:    *student,
		Attendance: attendance.Items,
		Summary:    models.SummarizeAttendance(attendance.Items),
	}, nil
}

// TeacherProfile loads a teacher and the groups assigned to them.
func (s *DashboardService) TeacherProfile(ctx context.Context, id int64) (*models.TeacherProfile, error) {
	var (
		teacher *models.User
		groups  *models.PaginatedResponse[models.Group]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teacher, err = s.admin.GetTeacher(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.admin.GetGroups(gctx, 1, s.cfg.LookupSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	owned := make([]models.Group, 0)
	for _, grp := range groups.Items {
		if grp.TeacherID == id {
			owned = append(owned, grp)
		}
	}
	return &models.TeacherProfile{Teacher: *teacher, Groups: owned}, nil
}

// GroupsScreen loads a groups page with teacher names resolved.
func (s *DashboardService) GroupsScreen(ctx context.Context, page int) (*models.GroupsScreen, error) {
	if page <= 0 {
		page = 1
	}
	size := s.cfg.PageSizes.Groups

	var (
		groups   *models.PaginatedResponse[models.Group]
		teachers *models.PaginatedResponse[models.User]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = s.admin.GetGroups(gctx, page, size)
		return err
	})
	g.Go(func() error {
		var err error
		teachers, err = s.admin.GetTeachers(gctx, 1, s.cfg.LookupSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(teachers.Items))
	for _, t := range teachers.Items {
		names[t.ID] = t.FullName()
	}
	rows := make([]models.GroupRow, 0, len(groups.Items))
	for _, grp := range groups.Items {
		rows = append(rows, models.GroupRow{Group: grp, TeacherName: names[grp.TeacherID]})
	}
	if missing := countMissing(rows); missing > 0 {
		s.logger.Debug("groups without resolved teacher", zap.Int("count", missing))
	}

	return &models.GroupsScreen{
		Groups: rows,
		Total:  groups.Total,
		Page:   page,
		Size:   size,
		Pages:  groups.Pages(size),
	}, nil
}

// GroupProfile loads a group, its members (filtered by the backend through
// group_id) and the teacher lookup used to name the group's teacher.
func (s *DashboardService) GroupProfile(ctx context.Context, id int64) (*models.GroupProfile, error) {
	var (
		group    *models.Group
		students *models.PaginatedResponse[models.Student]
		teachers *models.PaginatedResponse[models.User]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group, err = s.admin.GetGroup(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		students, err = s.admin.GetStudents(gctx, api.StudentListParams{Page: 1, Size: s.cfg.LookupSize, GroupID: id})
		return err
	})
	g.Go(func() error {
		var err error
		teachers, err = s.admin.GetTeachers(gctx, 1, s.cfg.LookupSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profile := &models.GroupProfile{Group: *group, Students: students.Items, Total: students.Total}
	for _, t := range teachers.Items {
		if t.ID == group.TeacherID {
			profile.TeacherName = t.FullName()
			break
		}
	}
	if profile.Students == nil {
		profile.Students = []models.Student{}
	}
	return profile, nil
}

func countMissing(rows []models.GroupRow) int {
	n := 0
	for _, r := range rows {
		if r.TeacherName == "" {
			n++
		}
	}
	return n
}
