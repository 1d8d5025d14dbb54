package services

import (
	"context"
	"strings"
	"time"

	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"gorm.io/gorm"
)

const (
	MinScore = 0
	MaxScore = 100
)

// AssignInput moves a candidacy forward and attaches interviewers to it.
// Status defaults to under_interview.
type AssignInput struct {
	CandidacyID  uint                   `json:"candidacy_id"`
	Status       models.CandidacyStatus `json:"status"`
	Interviewers []uint                 `json:"interviewers"`
	Profile      ProfileInput           `json:"profile"`
}

type AssignResult struct {
	Candidacy models.Candidacy         `json:"candidacy"`
	Records   []models.InterviewRecord `json:"records"`
}

// AssignInterview updates the candidate profile, transitions the candidacy and
// creates one interview record per interviewer, all in one transaction.
func (s *Services) AssignInterview(ctx context.Context, actor *models.UserProfile, in AssignInput) (*AssignResult, error) {
	if err := requireCap(actor, permissions.ManageInterview); err != nil {
		return nil, err
	}
	if in.CandidacyID == 0 {
		return nil, utils.FieldError("candidacy_id", "is required")
	}
	if in.Status == "" {
		in.Status = models.StatusUnderInterview
	}
	if !in.Status.Valid() {
		return nil, utils.FieldError("status", "unknown status")
	}
	interviewers := dedupe(in.Interviewers)

	result := &AssignResult{Records: []models.InterviewRecord{}}
	err := s.transaction(ctx, "assign interview", func(tx *gorm.DB) error {
		candidacy, err := findByID[models.Candidacy](forUpdate(tx), "Candidacy", in.CandidacyID, false)
		if err != nil {
			return err
		}
		if !CanTransition(candidacy.Status, in.Status) {
			return utils.Conflict("Cannot move candidacy from " + string(candidacy.Status) + " to " + string(in.Status))
		}

		candidate, err := findByID[models.UserProfile](forUpdate(tx), "User", candidacy.UserID, false)
		if err != nil {
			return err
		}
		if err := in.Profile.apply(candidate); err != nil {
			return err
		}
		if err := tx.Save(candidate).Error; err != nil {
			return err
		}

		if err := tx.Model(candidacy).Update("status", in.Status).Error; err != nil {
			return err
		}
		candidacy.Status = in.Status
		candidacy.User = candidate

		for _, interviewerID := range interviewers {
			if interviewerID == candidate.ID {
				return utils.FieldError("interviewers", "a candidate cannot interview themselves")
			}
			interviewer, err := findByID[models.UserProfile](tx, "User", interviewerID, false)
			if err != nil {
				if utils.KindOf(err) == utils.KindNotFound {
					return utils.FieldError("interviewers", "unknown interviewer")
				}
				return err
			}
			if !permissions.Has(interviewer.Privilege, permissions.ParticipateInterview) {
				return utils.FieldError("interviewers", "interviewer lacks participate_interview")
			}
			record := models.InterviewRecord{
				EnrollmentID:  candidacy.EnrollmentID,
				CandidacyID:   candidacy.ID,
				InterviewerID: interviewer.ID,
				IntervieweeID: candidate.ID,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			result.Records = append(result.Records, record)
		}
		result.Candidacy = *candidacy
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Printf("user %d assigned %d interviewer(s) to candidacy %d (%s)", actor.ID, len(result.Records), result.Candidacy.ID, result.Candidacy.Status)
	return result, nil
}

type ScoreInput struct {
	Score  *int    `json:"score"`
	Review *string `json:"review"`
}

// ScoreInterview records the assigned interviewer's score and review.
// The candidacy status is not touched.
func (s *Services) ScoreInterview(ctx context.Context, actor *models.UserProfile, id uint, in ScoreInput) (*models.InterviewRecord, error) {
	if err := requireCap(actor, permissions.ParticipateInterview); err != nil {
		return nil, err
	}
	if in.Score == nil {
		return nil, utils.FieldError("score", "is required")
	}
	if *in.Score < MinScore || *in.Score > MaxScore {
		return nil, utils.FieldError("score", "must be between 0 and 100")
	}

	var record *models.InterviewRecord
	err := s.transaction(ctx, "score interview", func(tx *gorm.DB) error {
		var err error
		record, err = findByID[models.InterviewRecord](forUpdate(tx), "Interview", id, false)
		if err != nil {
			return err
		}
		if record.InterviewerID != actor.ID {
			return utils.ForbiddenErr("Only the assigned interviewer can score this interview")
		}
		scoredAt := s.now().UTC()
		record.Score = *in.Score
		if in.Review != nil {
			record.Review = strings.TrimSpace(*in.Review)
		}
		record.ScoredAt = &scoredAt
		return tx.Model(record).Select("score", "review", "scored_at").Updates(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteInterviews soft-deletes every listed record, or none if any id is unknown.
func (s *Services) DeleteInterviews(ctx context.Context, actor *models.UserProfile, ids []uint) error {
	if err := requireCap(actor, permissions.ManageInterview); err != nil {
		return err
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return utils.FieldError("ids", "at least one id is required")
	}
	return s.transaction(ctx, "delete interviews", func(tx *gorm.DB) error {
		var live int64
		if err := tx.Model(&models.InterviewRecord{}).Where("id IN ?", ids).Count(&live).Error; err != nil {
			return err
		}
		if int(live) != len(ids) {
			return utils.NotFoundErr("Interview")
		}
		return tx.Where("id IN ?", ids).Delete(&models.InterviewRecord{}).Error
	})
}

// CandidateInterviews is one candidate of an enrollment as interview managers see it.
type CandidateInterviews struct {
	Candidacy models.Candidacy         `json:"candidacy"`
	Records   []models.InterviewRecord `json:"records"`
}

// AssignedInterview is an interview record as its interviewer sees it.
// The candidate is narrowed to the fields an interviewer needs.
type AssignedInterview struct {
	ID           uint                   `json:"id"`
	EnrollmentID uint                   `json:"enrollment_id"`
	CandidacyID  uint                   `json:"candidacy_id"`
	Score        int                    `json:"score"`
	Review       string                 `json:"review"`
	ScoredAt     *time.Time             `json:"scored_at,omitempty"`
	Interviewee  models.IntervieweeView `json:"interviewee"`
}

const (
	ManagerView     = "manager"
	InterviewerView = "interviewer"
)

type InterviewListing struct {
	View       string                `json:"view"`
	Candidates []CandidateInterviews `json:"candidates,omitempty"`
	Records    []AssignedInterview   `json:"records,omitempty"`
}

// ListInterviews returns the manager view for holders of manage_interview and
// the interviewer view for holders of participate_interview only. The manager
// view needs an enrollment; the interviewer view treats 0 as every enrollment.
func (s *Services) ListInterviews(ctx context.Context, actor *models.UserProfile, enrollmentID uint) (*InterviewListing, error) {
	if err := guard(actor, permissions.AnyOf, permissions.ManageInterview, permissions.ParticipateInterview); err != nil {
		return nil, err
	}
	if permissions.Has(actor.Privilege, permissions.ManageInterview) {
		if enrollmentID == 0 {
			return nil, utils.FieldError("enrollment_id", "is required")
		}
		candidates, err := s.candidateInterviews(ctx, enrollmentID)
		if err != nil {
			return nil, err
		}
		return &InterviewListing{View: ManagerView, Candidates: candidates}, nil
	}
	records, err := s.assignedInterviews(ctx, actor.ID, enrollmentID)
	if err != nil {
		return nil, err
	}
	return &InterviewListing{View: InterviewerView, Records: records}, nil
}

func (s *Services) candidateInterviews(ctx context.Context, enrollmentID uint) ([]CandidateInterviews, error) {
	db := s.db(ctx)
	if _, err := findByID[models.EnrollmentCycle](db, "Enrollment", enrollmentID, false); err != nil {
		return nil, s.fail("list interviews", err)
	}

	var candidacies []models.Candidacy
	if err := db.Preload("User").
		Where("enrollment_id = ?", enrollmentID).
		Order("id ASC").
		Find(&candidacies).Error; err != nil {
		return nil, s.fail("list interviews", utils.DBError("Candidacy", err))
	}
	var records []models.InterviewRecord
	if err := db.Preload("Interviewer").
		Where("enrollment_id = ?", enrollmentID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, s.fail("list interviews", utils.DBError("Interview", err))
	}

	byCandidacy := make(map[uint][]models.InterviewRecord)
	for _, r := range records {
		byCandidacy[r.CandidacyID] = append(byCandidacy[r.CandidacyID], r)
	}
	result := make([]CandidateInterviews, 0, len(candidacies))
	for _, c := range candidacies {
		// Candidacies of deleted users have no profile to show.
		if c.User == nil {
			continue
		}
		recs := byCandidacy[c.ID]
		if recs == nil {
			recs = []models.InterviewRecord{}
		}
		result = append(result, CandidateInterviews{Candidacy: c, Records: recs})
	}
	return result, nil
}

func (s *Services) assignedInterviews(ctx context.Context, interviewerID, enrollmentID uint) ([]AssignedInterview, error) {
	query := s.db(ctx).Preload("Interviewee").Where("interviewer_id = ?", interviewerID)
	if enrollmentID != 0 {
		query = query.Where("enrollment_id = ?", enrollmentID)
	}
	var records []models.InterviewRecord
	if err := query.Order("id ASC").Find(&records).Error; err != nil {
		return nil, s.fail("list interviews", utils.DBError("Interview", err))
	}

	result := make([]AssignedInterview, 0, len(records))
	for _, r := range records {
		item := AssignedInterview{
			ID:           r.ID,
			EnrollmentID: r.EnrollmentID,
			CandidacyID:  r.CandidacyID,
			Score:        r.Score,
			Review:       r.Review,
			ScoredAt:     r.ScoredAt,
		}
		if r.Interviewee != nil {
			item.Interviewee = r.Interviewee.IntervieweeView()
		} else {
			item.Interviewee = models.IntervieweeView{ID: r.IntervieweeID}
		}
		result = append(result, item)
	}
	return result, nil
}
