package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a registered member and their showcase profile.
//
// PasswordHash never leaves the service: it has no JSON form and profile reads project it away.
type User struct {
	ID                 bson.ObjectID      `bson:"_id,omitempty"       json:"id"`
	Name               string             `bson:"name"                json:"name"`
	Email              string             `bson:"email"               json:"email"`
	PasswordHash       string             `bson:"password_hash,omitempty" json:"-"`
	ProfilePicture     string             `bson:"profile_picture"     json:"profilePicture"`
	Bio                string             `bson:"bio"                 json:"bio"`
	Activities         []string           `bson:"activities"          json:"activities"`
	Education          []Education        `bson:"education"           json:"education"`
	WorkExperience     []WorkExperience   `bson:"work_experience"     json:"workExperience"`
	Age                *int               `bson:"age,omitempty"       json:"age,omitempty"`
	Achievements       []string           `bson:"achievements"        json:"achievements"`
	FutureGoals        string             `bson:"future_goals"        json:"futureGoals"`
	IsShowcasingWork   bool               `bson:"is_showcasing_work"  json:"isShowcasingWork"`
	LookingForHelp     bool               `bson:"looking_for_help"    json:"lookingForHelp"`
	LookingToHire      bool               `bson:"looking_to_hire"     json:"lookingToHire"`
	VerificationStatus VerificationStatus `bson:"verification_status" json:"verificationStatus"`
	Skills             []Skill            `bson:"skills"              json:"skills"`
	TeachingProfile    TeachingProfile    `bson:"teaching_profile"    json:"teachingProfile"`
	LastLoginAt        *time.Time         `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"          json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at"          json:"updatedAt"`
}

type Education struct {
	Institution string     `bson:"institution"           json:"institution"`
	Degree      string     `bson:"degree"                json:"degree"`
	Major       string     `bson:"major"                 json:"major"`
	StartDate   time.Time  `bson:"start_date"            json:"startDate"`
	EndDate     *time.Time `bson:"end_date,omitempty"    json:"endDate,omitempty"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
}

type WorkExperience struct {
	Company     string     `bson:"company"               json:"company"`
	Title       string     `bson:"title"                 json:"title"`
	StartDate   time.Time  `bson:"start_date"            json:"startDate"`
	EndDate     *time.Time `bson:"end_date,omitempty"    json:"endDate,omitempty"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
}

// SkillLevel is one of beginner, intermediate, advanced, expert.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

type Skill struct {
	Name     string     `bson:"name"     json:"name"`
	Level    SkillLevel `bson:"level"    json:"level"`
	Verified bool       `bson:"verified" json:"verified"`
}

type TeachingProfile struct {
	IsTeacher    bool           `bson:"is_teacher"   json:"isTeacher"`
	Subjects     []Subject      `bson:"subjects"     json:"subjects"`
	Availability []Availability `bson:"availability" json:"availability"`
}

type Subject struct {
	Name               string  `bson:"name"                 json:"name"`
	Description        string  `bson:"description"          json:"description"`
	PricePerHour       float64 `bson:"price_per_hour"       json:"pricePerHour"`
	IsSubscriptionOnly bool    `bson:"is_subscription_only" json:"isSubscriptionOnly"`
}

// Availability is a weekly window, e.g. {"monday", "09:00", "12:00"}.
type Availability struct {
	Day       string `bson:"day"        json:"day"`
	StartTime string `bson:"start_time" json:"startTime"`
	EndTime   string `bson:"end_time"   json:"endTime"`
}

// NewUser returns a user with every list initialised, so a fresh profile serialises [] rather than null.
func NewUser(name, email, passwordHash string) *User {
	return &User{
		Name:           name,
		Email:          email,
		PasswordHash:   passwordHash,
		Activities:     []string{},
		Education:      []Education{},
		WorkExperience: []WorkExperience{},
		Achievements:   []string{},
		Skills:         []Skill{},
		TeachingProfile: TeachingProfile{
			Subjects:     []Subject{},
			Availability: []Availability{},
		},
	}
}
