package domain

import "errors"

// ErrSurveyNotFound is returned when a loader has no survey with the requested id.
var ErrSurveyNotFound = errors.New("survey not found")

// ErrProgressNotFound is returned when no saved progress exists for a session.
var ErrProgressNotFound = errors.New("progress not found")

// ErrSessionCompleted is returned when mutating a session that already finished.
var ErrSessionCompleted = errors.New("session already completed")

// ErrNoQuestion is returned when the visible question list is empty.
var ErrNoQuestion = errors.New("no visible question")

// ErrCursorOutOfRange is returned by explicit cursor moves outside the visible list.
var ErrCursorOutOfRange = errors.New("cursor out of range")

// ErrRuleNotFound is returned when a rule id is unknown.
var ErrRuleNotFound = errors.New("rule not found")

// ErrLockTimeout is returned when a distributed lock could not be acquired in time.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// ErrUnknownQuestion is returned when an answer targets a question the survey does not have.
var ErrUnknownQuestion = errors.New("unknown question")

// ErrSessionConflict is returned when a session id already holds progress for another survey.
var ErrSessionConflict = errors.New("session belongs to another survey")
