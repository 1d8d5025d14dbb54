package services

import (
	"context"
	"strings"

	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"gorm.io/gorm"
)

type CourseInput struct {
	EnrollmentID *uint   `json:"enrollment_id"`
	Name         *string `json:"name"`
	Description  *string `json:"description"`
}

type SectionInput struct {
	CourseID *uint   `json:"course_id"`
	Name     *string `json:"name"`
}

type LessonInput struct {
	SectionID   *uint   `json:"section_id"`
	Order       *int    `json:"order"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Teacher     *string `json:"teacher"`
	Card        *string `json:"card"`
	Slides      *string `json:"slides"`
	Videos      *string `json:"videos"`
	Notes       *string `json:"notes"`
}

func (in LessonInput) apply(l *models.Lesson) {
	if in.Order != nil {
		l.Order = *in.Order
	}
	setString(&l.Title, in.Title)
	setString(&l.Description, in.Description)
	setString(&l.Teacher, in.Teacher)
	setString(&l.Card, in.Card)
	setString(&l.Slides, in.Slides)
	setString(&l.Videos, in.Videos)
	setString(&l.Notes, in.Notes)
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// ListCourses returns the courses of one enrollment cycle, or of every cycle when enrollmentID is 0.
func (s *Services) ListCourses(ctx context.Context, enrollmentID uint) ([]models.Course, error) {
	query := inLiveEnrollment(s.db(ctx).Model(&models.Course{}))
	if enrollmentID != 0 {
		query = query.Where("enrollment_id = ?", enrollmentID)
	}
	var courses []models.Course
	if err := query.Order("id ASC").Find(&courses).Error; err != nil {
		return nil, s.fail("list courses", utils.DBError("Course", err))
	}
	return courses, nil
}

// MyCourses returns the courses of every cycle in which the caller was accepted or kept as an observer.
func (s *Services) MyCourses(ctx context.Context, actor *models.UserProfile) ([]models.Course, error) {
	if actor == nil {
		return nil, utils.UnauthorizedErr("Unauthorized")
	}
	db := s.db(ctx)
	admitted := db.Model(&models.Candidacy{}).
		Select("enrollment_id").
		Where("user_id = ? AND status IN ?", actor.ID, []models.CandidacyStatus{models.StatusAccepted, models.StatusObserver})

	var courses []models.Course
	if err := inLiveEnrollment(db.Where("enrollment_id IN (?)", admitted)).Order("id ASC").Find(&courses).Error; err != nil {
		return nil, s.fail("my courses", utils.DBError("Course", err))
	}
	return courses, nil
}

// GetCourseTree returns a course with its sections and their ordered lessons.
// Courses of a deleted enrollment cycle are not found.
func (s *Services) GetCourseTree(ctx context.Context, id uint) (*models.Course, error) {
	if id == 0 {
		return nil, utils.NotFoundErr("Course")
	}
	var course models.Course
	err := inLiveEnrollment(s.db(ctx)).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Sections.Lessons", func(db *gorm.DB) *gorm.DB { return db.Order(models.LessonOrder) }).
		First(&course, id).Error
	if err != nil {
		return nil, s.fail("get course", utils.DBError("Course", err))
	}
	return &course, nil
}

func (s *Services) CreateCourse(ctx context.Context, actor *models.UserProfile, in CourseInput) (*models.Course, error) {
	if err := requireCap(actor, permissions.ManageLessons); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.EnrollmentID == nil {
		fields["enrollment_id"] = "is required"
	}
	if blank(in.Name) {
		fields["name"] = "is required"
	}
	if len(fields) > 0 {
		return nil, utils.Validation("Invalid course", fields)
	}

	course := &models.Course{EnrollmentID: *in.EnrollmentID}
	setString(&course.Name, in.Name)
	setString(&course.Description, in.Description)
	err := s.transaction(ctx, "create course", func(tx *gorm.DB) error {
		if _, err := findByID[models.EnrollmentCycle](tx, "Enrollment", course.EnrollmentID, false); err != nil {
			return err
		}
		return tx.Create(course).Error
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *Services) UpdateCourse(ctx context.Context, actor *models.UserProfile, id uint, in CourseInput) (*models.Course, error) {
	if err := requireCap(actor, permissions.ManageLessons); err != nil {
		return nil, err
	}
	if in.Name != nil && blank(in.Name) {
		return nil, utils.FieldError("name", "cannot be empty")
	}
	var course *models.Course
	err := s.transaction(ctx, "update course", func(tx *gorm.DB) error {
		var err error
		course, err = findByID[models.Course](forUpdate(tx), "Course", id, false)
		if err != nil {
			return err
		}
		if in.EnrollmentID != nil && *in.EnrollmentID != course.EnrollmentID {
			if _, err := findByID[models.EnrollmentCycle](tx, "Enrollment", *in.EnrollmentID, false); err != nil {
				return err
			}
			course.EnrollmentID = *in.EnrollmentID
		}
		setString(&course.Name, in.Name)
		setString(&course.Description, in.Description)
		return tx.Omit("Sections").Save(course).Error
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse soft-deletes a course. Its sections and lessons stay in place
// and become reachable again if the course is restored.
func (s *Services) DeleteCourse(ctx context.Context, actor *models.UserProfile, id uint) error {
	if err := requireCap(actor, permissions.ManageLessons); err != nil {
		return err
	}
	return s.transaction(ctx, "delete course", func(tx *gorm.DB) error {
		course, err := findByID[models.Course](tx, "Course", id, false)
		if err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
}

func (s *Services) ListSections(ctx context.Context, courseID uint) ([]models.Section, error) {
	db := s.db(ctx)
	if _, err := findByID[models.Course](inLiveEnrollment(db), "Course", courseID, false); err != nil {
		return nil, s.fail("list sections", err)
	}
	var sections []models.Section
	if err := db.Where("course_id = ?", courseID).Order("id ASC").Find(&sections).Error; err != nil {
		return nil, s.fail("list sections", utils.DBError("Section", err))
	}
	return sections, nil
}

func (s *Services) CreateSection(ctx context.Context, actor *models.UserProfile, in SectionInput) (*models.Section, error) {
	if err := requireCap(actor, permissions.ManageLessons); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.CourseID == nil {
		fields["course_id"] = "is required"
	}
	if blank(in.Name) {
		fields["name"] = "is required"
	}
	if len(fields) > 0 {
		return nil, utils.Validation("Invalid section", fields)
	}

	section := &models.Section{CourseID: *in.CourseID}
	setString(&section.Name, in.Name)
	err := s.transaction(ctx, "create section", func(tx *gorm.DB) error {
		if _, err := findByID[models.Course](tx, "Course", section.CourseID, false); err != nil {
			return err
		}
		return tx.Create(section).Error
	})
	if err != nil {
		return nil, err
	}
	return section, nil
}

func (s *Services) UpdateSection(ctx context.Context, actor *models.UserProfile, id uint, in SectionInput) (*models.Section, error) {
	if err := requireCap(actor, permissions.ManageLessons); err != nil {
		return nil, err
	}
	if in.Name != nil && blank(in.Name) {
		return nil, utils.FieldError("name", "cannot be empty")
	}
	var section *models.Section
	err := s.transaction(ctx, "update section", func(tx *gorm.DB) error {
		var err error
		section, err = findByID[models.Section](forUpdate(tx), "Section", id, false)
		if err != nil {
			return err
		}
		if in.CourseID != nil && *in.CourseID != section.CourseID {
			if _, err := findByID[models.Course](tx, "Course", *in.CourseID, false); err != nil {
				return err
			}
			section.CourseID = *in.CourseID
		}
		setString(&section.Name, in.Name)
		return tx.Omit("Lessons").Save(section).Error
	})
	if err != nil {
		return nil, err
	}
	return section, nil
}

func (s *Services) DeleteSection(ctx context.Context, actor *models.UserProfile, id uint) error {
	if err := requireCap(actor, permissions.ManageLessons); err != nil {
		return err
	}
	return s.transaction(ctx, "delete section", func(tx *gorm.DB) error {
		section, err := findByID[models.Section](tx, "Section", id, false)
		if err != nil {
			return err
		}
		return tx.Delete(section).Error
	})
}

// ListLessons returns the lessons of a section sorted by their order field.
// Lessons sharing an order value keep their creation order.
func (s *Services) ListLessons(ctx context.Context, sectionID uint) ([]models.Lesson, error) {
	db := s.db(ctx)
	if _, err := findByID[models.Section](db.Where("course_id IN (?)", liveCourseIDs(db)), "Section", sectionID, false); err != nil {
		return nil, s.fail("list lessons", err)
	}
	var lessons []models.Lesson
	if err := db.Where("section_id = ?", sectionID).Order(models.LessonOrder).Find(&lessons).Error; err != nil {
		return nil, s.fail("list lessons", utils.DBError("Lesson", err))
	}
	return lessons, nil
}

// CreateLesson stores the caller-supplied order as is. Siblings are never renumbered.
func (s *Services) CreateLesson(ctx context.Context, actor *models.UserProfile, in LessonInput) (*models.Lesson, error) {
	if err := requireCap(actor, permissions.ManageLessons); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.SectionID == nil {
		fields["section_id"] = "is required"
	}
	if blank(in.Title) {
		fields["title"] = "is required"
	}
	if len(fields) > 0 {
		return nil, utils.Validation("Invalid lesson", fields)
	}

	lesson := &models.Lesson{SectionID: *in.SectionID}
	in.apply(lesson)
	err := s.transaction(ctx, "create lesson", func(tx *gorm.DB) error {
		if _, err := findByID[models.Section](tx, "Section", lesson.SectionID, false); err != nil {
			return err
		}
		return tx.Create(lesson).Error
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *Services) UpdateLesson(ctx context.Context, actor *models.UserProfile, id uint, in LessonInput) (*models.Lesson, error) {
	if err := requireCap(actor, permissions.ManageLessons); err != nil {
		return nil, err
	}
	if in.Title != nil && blank(in.Title) {
		return nil, utils.FieldError("title", "cannot be empty")
	}
	var lesson *models.Lesson
	err := s.transaction(ctx, "update lesson", func(tx *gorm.DB) error {
		var err error
		lesson, err = findByID[models.Lesson](forUpdate(tx), "Lesson", id, false)
		if err != nil {
			return err
		}
		if in.SectionID != nil && *in.SectionID != lesson.SectionID {
			if _, err := findByID[models.Section](tx, "Section", *in.SectionID, false); err != nil {
				return err
			}
			lesson.SectionID = *in.SectionID
		}
		in.apply(lesson)
		return tx.Save(lesson).Error
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *Services) DeleteLesson(ctx context.Context, actor *models.UserProfile, id uint) error {
	if err := requireCap(actor, permissions.ManageLessons); err != nil {
		return err
	}
	return s.transaction(ctx, "delete lesson", func(tx *gorm.DB) error {
		lesson, err := findByID[models.Lesson](tx, "Lesson", id, false)
		if err != nil {
			return err
		}
		return tx.Delete(lesson).Error
	})
}
