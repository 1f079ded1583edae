package domain

import "errors"

var (
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrBankEmpty indicates the bank produced no usable safe questions.
	ErrBankEmpty = errors.New("question bank is empty")
	// ErrBankTooSmall indicates the bank cannot fill a minimum viable quiz
	// even after exclusion and category caps are relaxed.
	ErrBankTooSmall = errors.New("question bank smaller than quiz size")
	// ErrMissingField is returned when a request lacks a required field.
	ErrMissingField = errors.New("missing required field")
)
