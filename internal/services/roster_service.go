package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/tutor-service/internal/cache"
	"github.com/SAP-F-2025/tutor-service/internal/events"
	"github.com/SAP-F-2025/tutor-service/internal/fallback"
	"github.com/SAP-F-2025/tutor-service/internal/metrics"
	"github.com/SAP-F-2025/tutor-service/internal/mlclient"
	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/SAP-F-2025/tutor-service/internal/repositories"
	"github.com/SAP-F-2025/tutor-service/internal/validator"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

const (
	rosterSheet   = "Roster"
	maxRosterRows = 5000
)

var (
	requiredRosterColumns = []string{"name", "engagement_score", "avg_quiz_score"}
	rosterExportHeaders   = []string{"ID", "Name", "Engagement Score", "Avg Quiz Score", "Weakest Topic", "Risk Level"}
)

type rosterService struct {
	repo      repositories.Repository
	ml        mlclient.API
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *ServiceLogger
	validator *validator.Validator
}

func NewRosterService(
	repo repositories.Repository,
	ml mlclient.API,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *ServiceLogger,
	validator *validator.Validator,
) RosterService {
	if cacheService == nil {
		cacheService = cache.NewNoopCache()
	}
	return &rosterService{
		repo:      repo,
		ml:        ml,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== IMPORT =====

// parsedRow is a data row that passed validation.
type parsedRow struct {
	rowNum   int
	explicit bool // id came from the file
	student  *models.StudentMetrics
}

func (s *rosterService) Import(ctx context.Context, file io.Reader, filename, teacherID string) (*models.RosterImportResult, error) {
	start := time.Now()
	op := s.logger.WithOperation(ctx, "import_roster", teacherID)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	rows, err := readRosterRows(filename, data)
	if err != nil {
		op.LogResult(filename, "roster", err)
		return nil, err
	}
	if len(rows) < 2 {
		op.LogResult(filename, "roster", ErrEmptyRoster)
		return nil, ErrEmptyRoster
	}

	if n := dataRowCount(rows); n > maxRosterRows {
		err := NewBusinessRuleError("roster_size",
			fmt.Sprintf("roster files are limited to %d students", maxRosterRows),
			map[string]interface{}{"rows": n})
		op.LogResult(filename, "roster", err)
		return nil, err
	}

	header := headerIndex(rows[0])
	var missing []string
	for _, col := range requiredRosterColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		err := fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
		op.LogResult(filename, "roster", err)
		return nil, err
	}

	result := &models.RosterImportResult{FileName: filename}
	var valid []parsedRow
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		result.TotalRows++
		parsed, rowErrors := s.parseRow(row, header, i+2, teacherID)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorCount++
			continue
		}
		valid = append(valid, parsed)
	}

	if result.TotalRows == 0 {
		op.LogResult(filename, "roster", ErrEmptyRoster)
		return nil, ErrEmptyRoster
	}

	valid, foreign, err := s.dropForeignRows(ctx, valid, teacherID)
	if err != nil {
		err = fmt.Errorf("failed to check roster ownership: %w", err)
		op.LogResult(filename, "roster", err)
		return nil, err
	}
	result.Errors = append(result.Errors, foreign...)
	result.ErrorCount += len(foreign)

	s.scoreUnrated(ctx, filename, data, valid)

	students := make([]*models.StudentMetrics, 0, len(valid))
	for _, p := range valid {
		students = append(students, p.student)
	}
	if len(students) > 0 {
		if err := s.repo.Student().Upsert(ctx, students); err != nil {
			err = fmt.Errorf("failed to save roster: %w", err)
			op.LogResult(filename, "roster", err)
			return nil, err
		}
	}

	result.ImportedCount = len(students)
	for _, st := range students {
		result.Students = append(result.Students, *st)
	}
	switch {
	case result.ErrorCount == 0:
		result.Status = models.ImportCompleted
	case result.ImportedCount > 0:
		result.Status = models.ImportPartial
	default:
		result.Status = models.ImportValidationFailed
	}
	result.ProcessingTime = time.Since(start)

	if result.ImportedCount > 0 {
		// The all-students insight covers every roster.
		for _, scope := range []string{teacherID, ""} {
			if err := s.cache.DeletePattern(ctx, cache.InsightKey(scope, "*")); err != nil {
				s.logger.Info(ctx, "Insight cache not invalidated", "teacher_id", scope, "error", err)
			}
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, events.NewRosterImportedEvent(teacherID, filename, result.ImportedCount, result.ErrorCount)); err != nil {
			s.logger.LogPersistenceFailure(ctx, "publish_roster_imported", teacherID, err)
		}
	}

	op.LogResult(filename, "roster", nil)
	return result, nil
}

func readRosterRows(filename string, data []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: invalid CSV: %v", ErrBadRequest, err)
		}
		return rows, nil
	case ".xlsx":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid Excel file: %v", ErrBadRequest, err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyRoster
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, filepath.Ext(filename))
	}
}

// headerIndex maps normalised header names ("Avg Quiz Score" -> avg_quiz_score) to columns.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.Join(strings.Fields(key), "_")
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func dataRowCount(rows [][]string) int {
	n := 0
	for _, row := range rows[1:] {
		if !blankRow(row) {
			n++
		}
	}
	return n
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, header map[string]int, col string) string {
	i, ok := header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (s *rosterService) parseRow(row []string, header map[string]int, rowNum int, teacherID string) (parsedRow, []models.ImportRowError) {
	var errs []models.ImportRowError
	parseScore := func(col string) float64 {
		raw := strings.TrimSuffix(cell(row, header, col), "%")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, models.ImportRowError{Row: rowNum, Field: col, Message: "must be a number", Value: raw})
		}
		return v
	}

	student := &models.StudentMetrics{
		ID:              cell(row, header, "id"),
		Name:            cell(row, header, "name"),
		EngagementScore: parseScore("engagement_score"),
		AvgQuizScore:    parseScore("avg_quiz_score"),
		WeakestTopic:    cell(row, header, "weakest_topic"),
		TeacherID:       teacherID,
	}
	if raw := cell(row, header, "risk_level"); raw != "" {
		level := normalizeRiskLevel(raw)
		student.RiskLevel = &level
	}
	if len(errs) > 0 {
		return parsedRow{}, errs
	}

	if err := s.validator.Validate(student); err != nil {
		var fieldErrs ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, models.ImportRowError{
					Row:     rowNum,
					Field:   fe.Field,
					Message: fe.Message,
					Value:   fmt.Sprint(fe.Value),
				})
			}
		} else {
			errs = append(errs, models.ImportRowError{Row: rowNum, Message: err.Error()})
		}
		return parsedRow{}, errs
	}

	explicit := student.ID != ""
	if !explicit {
		student.ID = uuid.NewString()
	}
	return parsedRow{rowNum: rowNum, explicit: explicit, student: student}, nil
}

// dropForeignRows removes rows whose explicit id is already stored under another
// teacher and reports each of them as a row error.
func (s *rosterService) dropForeignRows(ctx context.Context, rows []parsedRow, teacherID string) ([]parsedRow, []models.ImportRowError, error) {
	var ids []string
	for _, p := range rows {
		if p.explicit {
			ids = append(ids, p.student.ID)
		}
	}
	if len(ids) == 0 {
		return rows, nil, nil
	}

	existing, err := s.repo.Student().GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	owner := make(map[string]string, len(existing))
	for _, st := range existing {
		owner[st.ID] = st.TeacherID
	}

	kept := rows[:0]
	var errs []models.ImportRowError
	for _, p := range rows {
		if t, ok := owner[p.student.ID]; ok && p.explicit && t != teacherID {
			errs = append(errs, models.ImportRowError{
				Row:     p.rowNum,
				Field:   "id",
				Message: "student belongs to another teacher",
				Value:   p.student.ID,
			})
			continue
		}
		kept = append(kept, p)
	}
	return kept, errs, nil
}

// normalizeRiskLevel accepts any casing ("high", "HIGH") for the three levels.
func normalizeRiskLevel(raw string) models.RiskLevel {
	for _, l := range []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		if strings.EqualFold(raw, string(l)) {
			return l
		}
	}
	return models.RiskLevel(raw)
}

// scoreUnrated fills in risk levels for rows that had none: one upload to the
// ML API, and the local classifier for anything it did not cover.
func (s *rosterService) scoreUnrated(ctx context.Context, filename string, data []byte, rows []parsedRow) {
	unrated := 0
	for _, p := range rows {
		if p.student.RiskLevel == nil {
			unrated++
		}
	}
	if unrated == 0 {
		return
	}

	byID := map[string]models.StudentMetrics{}
	byName := map[string]models.StudentMetrics{}
	scored, err := s.ml.UploadRoster(ctx, filename, bytes.NewReader(data))
	if err != nil {
		s.logger.LogFallback(ctx, "score_roster", err)
		metrics.RecordFallback("score_roster")
	}
	for _, st := range scored {
		if st.RiskLevel == nil {
			continue
		}
		if st.ID != "" {
			byID[st.ID] = st
		}
		byName[strings.ToLower(st.Name)] = st
	}

	for _, p := range rows {
		if p.student.RiskLevel != nil {
			continue
		}
		remote, ok := byID[p.student.ID]
		if !ok || !p.explicit {
			remote, ok = byName[strings.ToLower(p.student.Name)]
		}
		if ok {
			level := *remote.RiskLevel
			p.student.RiskLevel = &level
			p.student.RiskFactors = remote.RiskFactors
			continue
		}

		prediction := fallback.Classify(p.student.EngagementScore, p.student.AvgQuizScore)
		level := prediction.RiskLevel
		p.student.RiskLevel = &level
		if factors, err := json.Marshal(prediction.Factors); err == nil {
			p.student.RiskFactors = datatypes.JSON(factors)
		}
	}
}

// ===== EXPORT =====

func (s *rosterService) Export(ctx context.Context, teacherID string) ([]byte, error) {
	students, err := s.repo.Student().ListAll(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(rosterSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}

	for i, h := range rosterExportHeaders {
		name, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(rosterSheet, name, h)
	}
	for r, st := range students {
		risk := ""
		if st.RiskLevel != nil {
			risk = string(*st.RiskLevel)
		}
		values := []interface{}{st.ID, st.Name, st.EngagementScore, st.AvgQuizScore, st.WeakestTopic, risk}
		for c, v := range values {
			name, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(rosterSheet, name, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	s.logger.Info(ctx, "Roster exported", "teacher_id", teacherID, "students", len(students))
	return buf.Bytes(), nil
}

// ===== READ =====

func (s *rosterService) List(ctx context.Context, filters repositories.StudentFilters) (*StudentListResponse, error) {
	students, total, err := s.repo.Student().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if students == nil {
		students = []*models.StudentMetrics{}
	}
	return &StudentListResponse{
		Students: students,
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}, nil
}

func (s *rosterService) Get(ctx context.Context, id, teacherID string) (*models.StudentMetrics, error) {
	student, err := s.repo.Student().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student %s: %w", id, err)
	}
	if teacherID != "" && student.TeacherID != teacherID {
		return nil, NewPermissionError(teacherID, id, "student", "read", "student belongs to another teacher")
	}
	return student, nil
}
