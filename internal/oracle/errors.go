package oracle

import (
	apperrors "github.com/agbru/mpicalc/internal/errors"
)

var errNegative = apperrors.NewArithmeticError("FromBig", apperrors.ErrUnderflow)
