package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/DMALUVM/satprep-planner/internal/models"
	"github.com/DMALUVM/satprep-planner/internal/repositories"
)

// mockRepository is an in-memory Repository used across the service tests.
type mockRepository struct {
	question *mockQuestionRepo
	attempt  *mockAttemptRepo
	session  *mockSessionRepo
	mastery  *mockMasteryRepo
	mission  *mockMissionRepo
	report   *mockReportRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		question: &mockQuestionRepo{byID: map[string]*models.Question{}},
		attempt:  &mockAttemptRepo{},
		session:  &mockSessionRepo{byID: map[string]*models.PracticeSession{}},
		mastery:  &mockMasteryRepo{rows: map[string]*models.SkillMastery{}},
		mission:  &mockMissionRepo{rows: map[string]*models.DailyMission{}},
		report:   &mockReportRepo{rows: map[string]*models.WeeklyReport{}},
	}
}

func (m *mockRepository) Question() repositories.QuestionRepository { return m.question }
func (m *mockRepository) Attempt() repositories.AttemptRepository   { return m.attempt }
func (m *mockRepository) Session() repositories.SessionRepository   { return m.session }
func (m *mockRepository) Mastery() repositories.MasteryRepository   { return m.mastery }
func (m *mockRepository) Mission() repositories.MissionRepository   { return m.mission }
func (m *mockRepository) Report() repositories.ReportRepository     { return m.report }
func (m *mockRepository) User() repositories.UserRepository         { return nil }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// stubCatalog serves a fixed pool without touching the cache or loader.
type stubCatalog struct {
	pool []models.Question
}

func (c *stubCatalog) Refresh(ctx context.Context, actorID string) (*models.CatalogRefreshResponse, error) {
	return &models.CatalogRefreshResponse{Total: len(c.pool)}, nil
}

func (c *stubCatalog) GetQuestion(ctx context.Context, id string) (*QuestionResponse, error) {
	for i := range c.pool {
		if c.pool[i].ID == id {
			return &QuestionResponse{Question: &c.pool[i]}, nil
		}
	}
	return nil, ErrQuestionNotFound
}

func (c *stubCatalog) List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	return &QuestionListResponse{Total: int64(len(c.pool))}, nil
}

func (c *stubCatalog) GetStats(ctx context.Context) (*repositories.CatalogStats, error) {
	return &repositories.CatalogStats{TotalQuestions: len(c.pool)}, nil
}

func (c *stubCatalog) LoadPool(ctx context.Context) ([]models.Question, map[string]models.Question, error) {
	byID := make(map[string]models.Question, len(c.pool))
	for _, q := range c.pool {
		byID[q.ID] = q
	}
	return c.pool, byID, nil
}

// ===== QUESTIONS =====

type mockQuestionRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Question
}

func (r *mockQuestionRepo) put(q models.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := q
	r.byID[q.ID] = &copied
}

func (r *mockQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.put(*question)
	return nil
}

func (r *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.byID[id]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.put(*question)
	return nil
}

func (r *mockQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *mockQuestionRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	for _, q := range questions {
		r.put(*q)
	}
	return nil
}

func (r *mockQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Question
	for _, id := range ids {
		if q, ok := r.byID[id]; ok {
			copied := *q
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *mockQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	all, _ := r.GetAll(ctx, tx)
	return all, int64(len(all)), nil
}

func (r *mockQuestionRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		copied := *r.byID[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *mockQuestionRepo) GetBySkill(ctx context.Context, tx *gorm.DB, skill string, filters repositories.QuestionFilters) ([]*models.Question, error) {
	all, _ := r.GetAll(ctx, tx)
	var out []*models.Question
	for _, q := range all {
		if q.Skill == skill {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *mockQuestionRepo) GetByDomain(ctx context.Context, tx *gorm.DB, domain models.QuestionDomain, filters repositories.QuestionFilters) ([]*models.Question, error) {
	all, _ := r.GetAll(ctx, tx)
	var out []*models.Question
	for _, q := range all {
		if q.Domain == domain {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *mockQuestionRepo) GetVariants(ctx context.Context, tx *gorm.DB, canonicalID string) ([]*models.Question, error) {
	all, _ := r.GetAll(ctx, tx)
	var out []*models.Question
	for _, q := range all {
		if q.CanonicalID == canonicalID || q.ID == canonicalID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *mockQuestionRepo) Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok, nil
}

func (r *mockQuestionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *mockQuestionRepo) GetCatalogStats(ctx context.Context, tx *gorm.DB) (*repositories.CatalogStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repositories.CatalogStats{
		TotalQuestions:    len(r.byID),
		QuestionsByDomain: map[models.QuestionDomain]int{},
	}
	skills := map[string]bool{}
	for _, q := range r.byID {
		stats.QuestionsByDomain[q.Domain]++
		skills[q.Skill] = true
		if q.IsVariant {
			stats.VariantCount++
		}
	}
	stats.SkillCount = len(skills)
	return stats, nil
}

// ===== ATTEMPTS =====

type mockAttemptRepo struct {
	mu       sync.Mutex
	attempts []models.Attempt
	nextID   uint
}

func (r *mockAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	attempt.ID = r.nextID
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *mockAttemptRepo) CreateBatch(ctx context.Context, tx *gorm.DB, attempts []*models.Attempt) error {
	for _, a := range attempts {
		if err := r.Create(ctx, tx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *mockAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		if a.ID == id {
			copied := a
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAttemptRepo) forStudent(studentID string) []models.Attempt {
	var out []models.Attempt
	for _, a := range r.attempts {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out
}

func (r *mockAttemptRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Attempt, 0, len(r.attempts))
	for i := range r.attempts {
		copied := r.attempts[i]
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *mockAttemptRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.forStudent(studentID)
	out := make([]*models.Attempt, 0, len(rows))
	for i := range rows {
		copied := rows[i]
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *mockAttemptRepo) GetRecentByStudent(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.forStudent(studentID)
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]*models.Attempt, 0, len(rows))
	for i := range rows {
		copied := rows[i]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *mockAttemptRepo) GetBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Attempt
	for i := range r.attempts {
		if r.attempts[i].SessionID == sessionID {
			copied := r.attempts[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *mockAttemptRepo) GetByStudentSince(ctx context.Context, tx *gorm.DB, studentID string, since time.Time) ([]*models.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Attempt
	for _, a := range r.forStudent(studentID) {
		if !a.CreatedAt.Before(since) {
			copied := a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *mockAttemptRepo) CountByStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.forStudent(studentID))), nil
}

func (r *mockAttemptRepo) CountByStudentAndSkill(ctx context.Context, tx *gorm.DB, studentID, skill string) (int64, error) {
	return 0, nil
}

func (r *mockAttemptRepo) GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string) (*repositories.AttemptStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repositories.AttemptStats{}
	var seconds float64
	for _, a := range r.forStudent(studentID) {
		stats.TotalAttempts++
		if a.IsCorrect {
			stats.CorrectAttempts++
		}
		seconds += a.SecondsSpent
	}
	if stats.TotalAttempts > 0 {
		stats.AccuracyPct = float64(stats.CorrectAttempts) / float64(stats.TotalAttempts) * 100
		stats.AvgSeconds = seconds / float64(stats.TotalAttempts)
	}
	return stats, nil
}

// ===== SESSIONS =====

type mockSessionRepo struct {
	mu   sync.Mutex
	byID map[string]*models.PracticeSession
}

func (r *mockSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.byID[session.ID] = &copied
	return nil
}

func (r *mockSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.PracticeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error {
	return r.Create(ctx, tx, session)
}

func (r *mockSessionRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.SessionFilters) ([]*models.PracticeSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PracticeSession
	for _, s := range r.byID {
		if s.StudentID == studentID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *mockSessionRepo) GetRecentTimed(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.PracticeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PracticeSession
	for _, s := range r.byID {
		if s.StudentID == studentID && s.Mode == models.ModeTimed {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// ===== MASTERY =====

type mockMasteryRepo struct {
	mu   sync.Mutex
	rows map[string]*models.SkillMastery // keyed studentID + "|" + skill
}

func masteryKey(studentID, skill string) string { return studentID + "|" + skill }

func (r *mockMasteryRepo) Upsert(ctx context.Context, tx *gorm.DB, mastery *models.SkillMastery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *mastery
	r.rows[masteryKey(mastery.StudentID, mastery.Skill)] = &copied
	return nil
}

func (r *mockMasteryRepo) GetByStudentSkill(ctx context.Context, tx *gorm.DB, studentID, skill string) (*models.SkillMastery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[masteryKey(studentID, skill)]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockMasteryRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.SkillMastery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.rows))
	for k, m := range r.rows {
		if m.StudentID == studentID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]*models.SkillMastery, 0, len(keys))
	for _, k := range keys {
		copied := *r.rows[k]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *mockMasteryRepo) GetDue(ctx context.Context, tx *gorm.DB, studentID string, asOf time.Time) ([]*models.SkillMastery, error) {
	rows, _ := r.GetByStudent(ctx, tx, studentID)
	var out []*models.SkillMastery
	for _, m := range rows {
		if m.DueBy(asOf) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *mockMasteryRepo) Exists(ctx context.Context, tx *gorm.DB, studentID, skill string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[masteryKey(studentID, skill)]
	return ok, nil
}

// ===== MISSIONS =====

type mockMissionRepo struct {
	mu     sync.Mutex
	rows   map[string]*models.DailyMission // keyed studentID + "|" + planDate
	nextID uint
}

func missionKey(studentID, planDate string) string { return studentID + "|" + planDate }

func (r *mockMissionRepo) Upsert(ctx context.Context, tx *gorm.DB, mission *models.DailyMission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := missionKey(mission.StudentID, mission.PlanDate)
	if existing, ok := r.rows[key]; ok {
		mission.ID = existing.ID
	} else {
		r.nextID++
		mission.ID = r.nextID
	}
	copied := *mission
	r.rows[key] = &copied
	return nil
}

func (r *mockMissionRepo) GetByStudentAndDate(ctx context.Context, tx *gorm.DB, studentID, planDate string) (*models.DailyMission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[missionKey(studentID, planDate)]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockMissionRepo) Update(ctx context.Context, tx *gorm.DB, mission *models.DailyMission) error {
	return r.Upsert(ctx, tx, mission)
}

func (r *mockMissionRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.MissionFilters) ([]*models.DailyMission, int64, error) {
	rows, err := r.GetByStudentDateRange(ctx, tx, studentID, "", "9999-99-99")
	return rows, int64(len(rows)), err
}

func (r *mockMissionRepo) GetByStudentDateRange(ctx context.Context, tx *gorm.DB, studentID, dateFrom, dateTo string) ([]*models.DailyMission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DailyMission
	for _, m := range r.rows {
		if m.StudentID == studentID && m.PlanDate >= dateFrom && m.PlanDate <= dateTo {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlanDate < out[j].PlanDate })
	return out, nil
}

func (r *mockMissionRepo) Exists(ctx context.Context, tx *gorm.DB, studentID, planDate string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[missionKey(studentID, planDate)]
	return ok, nil
}

// ===== REPORTS =====

type mockReportRepo struct {
	mu   sync.Mutex
	rows map[string]*models.WeeklyReport // keyed studentID + "|" + weekStart
}

func reportKey(studentID, weekStart string) string { return studentID + "|" + weekStart }

func (r *mockReportRepo) Upsert(ctx context.Context, tx *gorm.DB, report *models.WeeklyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *report
	r.rows[reportKey(report.StudentID, report.WeekStart)] = &copied
	return nil
}

func (r *mockReportRepo) GetByStudentAndWeek(ctx context.Context, tx *gorm.DB, studentID, weekStart string) (*models.WeeklyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rep, ok := r.rows[reportKey(studentID, weekStart)]; ok {
		copied := *rep
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockReportRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.WeeklyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WeeklyReport
	for _, rep := range r.rows {
		if rep.StudentID == studentID {
			copied := *rep
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart > out[j].WeekStart })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
