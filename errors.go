package punkrun

// AppError is a failure code surfaced to callers. Values are wrapped with
// context via github.com/pkg/errors; use errors.Is to test for a code.
type AppError uint8

const (
	ErrAllocation   AppError = iota + 1 // arena creation exceeded its limit
	ErrAssetLoad                        // the asset blob could not be fetched
	ErrAssetRead                        // the asset blob is malformed
	ErrAssetVersion                     // the asset blob has the wrong version stamp
	ErrConfig                           // the configuration is invalid
)

func (e AppError) Error() string {
	switch e {
	case ErrAllocation:
		return "punkrun: allocation failed"
	case ErrAssetLoad:
		return "punkrun: asset load failed"
	case ErrAssetRead:
		return "punkrun: asset read failed"
	case ErrAssetVersion:
		return "punkrun: asset version mismatch"
	case ErrConfig:
		return "punkrun: invalid configuration"
	default:
		return "punkrun: unknown error"
	}
}
