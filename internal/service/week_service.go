package service

import (
	"errors"
	"math/rand"
	"time"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

var ErrWeekNotFound = errors.New("week not found")

const (
	// MinWeekNumber..MaxWeekNumber is the range reference content exists
	// for. Week 40 is the due-date week; content extends to 42 for overdue
	// pregnancies.
	MinWeekNumber = 1
	MaxWeekNumber = 42

	pregnancyDays = 280
)

// WeekStateSource yields immutable weekly reference content. Satisfied by
// the GORM repository directly or by a cache wrapped around it.
type WeekStateSource interface {
	FindBabyState(weekNumber int) (*domain.WeekBabyState, error)
	FindMomState(weekNumber int) (*domain.WeekMomState, error)
}

// BabySummary is the dashboard subset of a week's baby state.
type BabySummary struct {
	WeekNumber int      `json:"weekNumber"`
	Analogy    *string  `json:"analogy"`
	BabySize   float64  `json:"babySize"`
	BabyWeight float64  `json:"babyWeight"`
	Image      string   `json:"image"`
}

type MomTip struct {
	DailyTip   *string            `json:"dailyTip"`
	ComfortTip *domain.ComfortTip `json:"comfortTip"`
}

type WeekDashboard struct {
	WeekNumber int         `json:"weekNumber"`
	Baby       BabySummary `json:"baby"`
	MomTip     MomTip      `json:"momTip"`
}

type CurrentWeekInfo struct {
	WeekDashboard
	DaysToChildbirth int `json:"daysToChildbirth"`
}

type WeekService struct {
	weeks WeekStateSource
	users repository.UserRepository
}

func NewWeekService(weeks WeekStateSource, users repository.UserRepository) *WeekService {
	return &WeekService{weeks: weeks, users: users}
}

func (s *WeekService) GetBabyState(weekNumber int) (*domain.WeekBabyState, error) {
	state, err := s.weeks.FindBabyState(weekNumber)
	if err != nil {
		if errors.Is(err, repository.ErrWeekNotFound) {
			return nil, ErrWeekNotFound
		}
		return nil, err
	}
	return state, nil
}

func (s *WeekService) GetMomState(weekNumber int) (*domain.WeekMomState, error) {
	state, err := s.weeks.FindMomState(weekNumber)
	if err != nil {
		if errors.Is(err, repository.ErrWeekNotFound) {
			return nil, ErrWeekNotFound
		}
		return nil, err
	}
	return state, nil
}

// GetDashboard combines the baby summary for a week with one randomly
// picked daily tip and comfort tip.
func (s *WeekService) GetDashboard(weekNumber int) (*WeekDashboard, error) {
	baby, err := s.GetBabyState(weekNumber)
	if err != nil {
		return nil, err
	}
	mom, err := s.GetMomState(weekNumber)
	if err != nil {
		return nil, err
	}

	var dailyTip *string
	if len(baby.MomDailyTips) > 0 {
		tip := baby.MomDailyTips[rand.Intn(len(baby.MomDailyTips))]
		dailyTip = &tip
	}
	var comfortTip *domain.ComfortTip
	if len(mom.ComfortTips) > 0 {
		tip := mom.ComfortTips[rand.Intn(len(mom.ComfortTips))]
		comfortTip = &tip
	}

	return &WeekDashboard{
		WeekNumber: weekNumber,
		Baby: BabySummary{
			WeekNumber: baby.WeekNumber,
			Analogy:    baby.Analogy,
			BabySize:   baby.BabySize,
			BabyWeight: baby.BabyWeight,
			Image:      baby.Image,
		},
		MomTip: MomTip{DailyTip: dailyTip, ComfortTip: comfortTip},
	}, nil
}

// GetCurrentWeek derives the pregnancy week from the user's due date. A
// missing due date is treated as 40 weeks out, i.e. week 1.
func (s *WeekService) GetCurrentWeek(userID string) (*CurrentWeekInfo, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	today := timeutil.Today()
	dueDate := today.Add(pregnancyDays * 24 * time.Hour)
	if user.DueDate != nil {
		dueDate = timeutil.Truncate(*user.DueDate)
	}

	daysToChildbirth := timeutil.DaysBetween(today, dueDate)
	if daysToChildbirth < 0 {
		daysToChildbirth = 0
	}

	// Week 40 is the due-date week.
	currentWeek := 40 - daysToChildbirth/7
	if currentWeek < MinWeekNumber {
		currentWeek = MinWeekNumber
	}
	if currentWeek > 40 {
		currentWeek = 40
	}

	dashboard, err := s.GetDashboard(currentWeek)
	if err != nil {
		return nil, err
	}
	return &CurrentWeekInfo{WeekDashboard: *dashboard, DaysToChildbirth: daysToChildbirth}, nil
}
