package usecase

import (
	"context"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/repository"
)

// Question is a multiple-choice question as shown to the user. The correct option stays on the server.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type bankQuestion struct {
	Question
	correct int
}

var professionalTest = []bankQuestion{
	{
		Question: Question{
			ID:       1,
			Question: "What is the primary purpose of version control systems?",
			Options: []string{
				"To make backup copies of files",
				"To track changes and collaborate on code",
				"To compress files for storage",
				"To encrypt sensitive data",
			},
		},
		correct: 1,
	},
	{
		Question: Question{
			ID:       2,
			Question: "Which principle is NOT part of SOLID principles?",
			Options: []string{
				"Single Responsibility",
				"Open/Closed",
				"Quick Response",
				"Dependency Inversion",
			},
		},
		correct: 2,
	},
	{
		Question: Question{
			ID:       3,
			Question: "What does an automated test suite in continuous integration mainly protect against?",
			Options: []string{
				"Slow network connections",
				"Regressions reaching the main branch",
				"Running out of disk space",
				"Unlicensed fonts",
			},
		},
		correct: 1,
	},
	{
		Question: Question{
			ID:       4,
			Question: "Which HTTP status code means the client must authenticate first?",
			Options: []string{
				"200 OK",
				"301 Moved Permanently",
				"401 Unauthorized",
				"500 Internal Server Error",
			},
		},
		correct: 2,
	},
	{
		Question: Question{
			ID:       5,
			Question: "What is the main goal of a code review?",
			Options: []string{
				"To assign blame for bugs",
				"To improve code quality and share knowledge",
				"To measure typing speed",
				"To replace testing",
			},
		},
		correct: 1,
	},
}

// QuizUsecase serves the professional test and records its result.
type QuizUsecase interface {
	Questions() []Question
	Submit(ctx context.Context, userID string, answers []int) (*QuizResult, error)
}

// QuizResult is the graded outcome of one submission.
type QuizResult struct {
	Score              float64                   `json:"score"`
	CorrectAnswers     int                       `json:"correctAnswers"`
	TotalQuestions     int                       `json:"totalQuestions"`
	VerificationStatus *model.VerificationStatus `json:"verificationStatus"`
}

type quizUsecase struct {
	userRepo repository.UserRepository
}

func NewQuizUsecase(userRepo repository.UserRepository) QuizUsecase {
	return &quizUsecase{
		userRepo: userRepo,
	}
}

func (u *quizUsecase) Questions() []Question {
	out := make([]Question, len(professionalTest))
	for i, q := range professionalTest {
		out[i] = Question{
			ID:       q.ID,
			Question: q.Question.Question,
			Options:  append([]string(nil), q.Options...),
		}
	}

	return out
}

func (u *quizUsecase) Submit(ctx context.Context, userID string, answers []int) (*QuizResult, error) {
	if len(answers) != len(professionalTest) {
		return nil, ErrAnswerCount
	}

	correct := 0
	for i, q := range professionalTest {
		if answers[i] == q.correct {
			correct++
		}
	}

	score := float64(correct) / float64(len(professionalTest)) * 100

	user, err := u.userRepo.RecordProfessionalTest(ctx, userID, score)
	if err != nil {
		return nil, mapUserError(err)
	}

	return &QuizResult{
		Score:              score,
		CorrectAnswers:     correct,
		TotalQuestions:     len(professionalTest),
		VerificationStatus: &user.VerificationStatus,
	}, nil
}
