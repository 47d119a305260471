package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrInvalidCourseID    = errors.New("invalid course ID")
	ErrCourseNotFound     = errors.New("course not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)
