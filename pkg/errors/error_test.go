package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidInput, "symbol is required")
	suite.Equal(ErrCodeInvalidInput, err.Code)
	suite.Equal("symbol is required", err.Message)
	suite.Nil(err.Cause)
	suite.Equal("[100] symbol is required", err.Error())
}

func (suite *ErrorTestSuite) TestWrapfKeepsCause() {
	cause := errors.New("connection refused")
	err := Wrapf(ErrCodeProviderFailure, cause, "fetch %s", "THYAO.IS")
	suite.Equal("[700] fetch THYAO.IS: connection refused", err.Error())
	suite.ErrorIs(err, cause)
}

func (suite *ErrorTestSuite) TestGetCodeThroughWrapping() {
	inner := New(ErrCodeUpstreamDataUnavailable, "no data")
	outer := fmt.Errorf("analyze: %w", inner)
	suite.Equal(ErrCodeUpstreamDataUnavailable, GetCode(outer))
	suite.True(HasCode(outer, ErrCodeUpstreamDataUnavailable))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
}

func (suite *ErrorTestSuite) TestInsufficientData() {
	err := NewInsufficientDataError("macd", 35, 20)
	suite.Equal("insufficient data for macd: need 35 bars, have 20", err.Error())
	suite.True(IsInsufficientDataError(fmt.Errorf("wrapped: %w", err)))
	suite.Equal(ErrCodeInsufficientData, GetCode(err))
}

func (suite *ErrorTestSuite) TestCodeString() {
	suite.Equal("numeric_degeneracy", ErrCodeNumericDegeneracy.String())
	suite.Equal("unknown", ErrorCode(999).String())
}
