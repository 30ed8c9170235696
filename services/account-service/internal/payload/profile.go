package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/usecase"
)

// Date accepts both a calendar date (2006-01-02), as sent by date inputs, and an RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}

	return fmt.Errorf("invalid date %q", s)
}

func (d *Date) timePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type EducationRequest struct {
	Institution string `json:"institution" validate:"required,max=200"`
	Degree      string `json:"degree"      validate:"max=200"`
	Major       string `json:"major"       validate:"max=200"`
	StartDate   Date   `json:"startDate"   validate:"required"`
	EndDate     *Date  `json:"endDate"`
	Description string `json:"description" validate:"max=2000"`
}

type WorkExperienceRequest struct {
	Company     string `json:"company"     validate:"required,max=200"`
	Title       string `json:"title"       validate:"required,max=200"`
	StartDate   Date   `json:"startDate"   validate:"required"`
	EndDate     *Date  `json:"endDate"`
	Description string `json:"description" validate:"max=2000"`
}

// SkillRequest has no verified field: clients cannot mark their own skills verified.
type SkillRequest struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Level string `json:"level" validate:"required,oneof=beginner intermediate advanced expert"`
}

type SubjectRequest struct {
	Name               string  `json:"name"               validate:"required,max=100"`
	Description        string  `json:"description"        validate:"max=2000"`
	PricePerHour       float64 `json:"pricePerHour"       validate:"gte=0"`
	IsSubscriptionOnly bool    `json:"isSubscriptionOnly"`
}

type AvailabilityRequest struct {
	Day       string `json:"day"       validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime"   validate:"required,datetime=15:04"`
}

type TeachingProfileRequest struct {
	IsTeacher    bool                  `json:"isTeacher"`
	Subjects     []SubjectRequest      `json:"subjects"     validate:"dive"`
	Availability []AvailabilityRequest `json:"availability" validate:"dive"`
}

// UpdateProfileRequest is a partial profile. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Name             *string                  `json:"name"             validate:"omitnil,notblank,max=100"`
	Bio              *string                  `json:"bio"              validate:"omitnil,max=2000"`
	Activities       *[]string                `json:"activities"       validate:"omitnil,dive,max=200"`
	Education        *[]EducationRequest      `json:"education"        validate:"omitnil,dive"`
	WorkExperience   *[]WorkExperienceRequest `json:"workExperience"   validate:"omitnil,dive"`
	Age              *int                     `json:"age"              validate:"omitnil,min=0,max=150"`
	Achievements     *[]string                `json:"achievements"     validate:"omitnil,dive,max=500"`
	FutureGoals      *string                  `json:"futureGoals"      validate:"omitnil,max=2000"`
	IsShowcasingWork *bool                    `json:"isShowcasingWork"`
	LookingForHelp   *bool                    `json:"lookingForHelp"`
	LookingToHire    *bool                    `json:"lookingToHire"`
	Skills           *[]SkillRequest          `json:"skills"           validate:"omitnil,dive"`
	TeachingProfile  *TeachingProfileRequest  `json:"teachingProfile"`
}

// Params converts the request to use case parameters. Present lists are never nil, so clearing a
// list stores [] rather than null.
func (r *UpdateProfileRequest) Params() usecase.UpdateProfileParams {
	params := usecase.UpdateProfileParams{
		Name:             r.Name,
		Bio:              r.Bio,
		Age:              r.Age,
		FutureGoals:      r.FutureGoals,
		IsShowcasingWork: r.IsShowcasingWork,
		LookingForHelp:   r.LookingForHelp,
		LookingToHire:    r.LookingToHire,
	}

	if r.Activities != nil {
		params.Activities = nonNil(*r.Activities)
	}
	if r.Achievements != nil {
		params.Achievements = nonNil(*r.Achievements)
	}

	if r.Education != nil {
		education := make([]model.Education, 0, len(*r.Education))
		for _, e := range *r.Education {
			education = append(education, model.Education{
				Institution: e.Institution,
				Degree:      e.Degree,
				Major:       e.Major,
				StartDate:   e.StartDate.Time,
				EndDate:     e.EndDate.timePtr(),
				Description: e.Description,
			})
		}
		params.Education = &education
	}

	if r.WorkExperience != nil {
		work := make([]model.WorkExperience, 0, len(*r.WorkExperience))
		for _, w := range *r.WorkExperience {
			work = append(work, model.WorkExperience{
				Company:     w.Company,
				Title:       w.Title,
				StartDate:   w.StartDate.Time,
				EndDate:     w.EndDate.timePtr(),
				Description: w.Description,
			})
		}
		params.WorkExperience = &work
	}

	if r.Skills != nil {
		skills := make([]model.Skill, 0, len(*r.Skills))
		for _, s := range *r.Skills {
			skills = append(skills, model.Skill{Name: s.Name, Level: model.SkillLevel(s.Level)})
		}
		params.Skills = &skills
	}

	if r.TeachingProfile != nil {
		tp := model.TeachingProfile{
			IsTeacher:    r.TeachingProfile.IsTeacher,
			Subjects:     make([]model.Subject, 0, len(r.TeachingProfile.Subjects)),
			Availability: make([]model.Availability, 0, len(r.TeachingProfile.Availability)),
		}
		for _, s := range r.TeachingProfile.Subjects {
			tp.Subjects = append(tp.Subjects, model.Subject(s))
		}
		for _, a := range r.TeachingProfile.Availability {
			tp.Availability = append(tp.Availability, model.Availability(a))
		}
		params.TeachingProfile = &tp
	}

	return params
}

func nonNil(s []string) *[]string {
	out := append([]string{}, s...)
	return &out
}

type VerifyDocumentRequest struct {
	DocumentType string `json:"documentType" validate:"required,oneof=studentId nationalId"`
	DocumentURL  string `json:"documentUrl"  validate:"required,max=2048"`
}

type VerifyDocumentResponse struct {
	Message            string                    `json:"message"`
	VerificationStatus *model.VerificationStatus `json:"verificationStatus"`
}

type QuizSubmissionRequest struct {
	Answers []int `json:"answers" validate:"required,dive,min=0"`
}

type QuizQuestionsResponse struct {
	Questions []usecase.Question `json:"questions"`
}

type QuizSubmissionResponse struct {
	Message string `json:"message"`
	*usecase.QuizResult
}
