package service

import "errors"

var (
	// ErrNotInWatchlist is returned when an operation targets an id that is not on
	// the watchlist.
	ErrNotInWatchlist = errors.New("asset is not on the watchlist")
	// ErrInvalidAssetKind is returned for an asset kind other than crypto or stocks.
	ErrInvalidAssetKind = errors.New("invalid asset kind")
	// ErrUnknownAsset is returned when a valuation is requested for an asset outside
	// the catalogue.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrInvalidTargetYear is returned for a valuation target year in the past.
	ErrInvalidTargetYear = errors.New("target year must not be in the past")
	// ErrEmptyMessage is returned when a chat message has no text.
	ErrEmptyMessage = errors.New("message is empty")
)
