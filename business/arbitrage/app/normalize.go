package app

import (
	"errors"
	"fmt"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
	"github.com/fd1az/p2p-arbitrage/internal/apperror"
)

// NormalizeError converts any error into the display-ready ErrorRecord.
// Errors that are not *apperror.AppError become INTERNAL_ERROR. A nil
// error yields nil.
func NormalizeError(err error) *domain.ErrorRecord {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(apperror.CodeInternalError, err.Error(), err)
	}

	rec := &domain.ErrorRecord{
		Code:            string(appErr.Code),
		Message:         appErr.Detail(),
		UpstreamCode:    appErr.UpstreamCode,
		UpstreamMessage: appErr.UpstreamMessage,
		HasError:        true,
	}

	rec.CompactText = fmt.Sprintf("%s: %s", rec.Code, rec.Message)
	rec.ExtendedText = rec.CompactText
	if appErr.HasUpstream() {
		rec.ExtendedText += fmt.Sprintf(" (upstream %s: %s)", rec.UpstreamCode, rec.UpstreamMessage)
	}

	return rec
}
