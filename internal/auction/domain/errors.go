package domain

import "errors"

var (
	ErrAuctionNotFound       = errors.New("auction not found")
	ErrAuctionNotActive      = errors.New("auction is not active")
	ErrAuctionNotEnded       = errors.New("auction has not reached its end time")
	ErrBidTooLow             = errors.New("bid amount is below the minimum acceptable")
	ErrInvalidInput          = errors.New("bid amount must be a positive integer")
	ErrStaleAuction          = errors.New("auction state changed since it was read")
	ErrConcurrentBidConflict = errors.New("concurrent bid retry budget exhausted")
)
