package duckdb

import (
	"errors"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/marcboeker/go-duckdb"
)

// errorTypes maps go-duckdb error types onto the canonical kinds. Types
// not listed fall back to DatabaseError.
var errorTypes = map[duckdb.ErrorType]dberr.Kind{
	duckdb.ErrorTypeConstraint: dberr.KindIntegrity,

	duckdb.ErrorTypeOutOfRange:   dberr.KindData,
	duckdb.ErrorTypeConversion:   dberr.KindData,
	duckdb.ErrorTypeDecimal:      dberr.KindData,
	duckdb.ErrorTypeMismatchType: dberr.KindData,
	duckdb.ErrorTypeDivideByZero: dberr.KindData,
	duckdb.ErrorTypeInvalidInput: dberr.KindData,

	duckdb.ErrorTypeParser:               dberr.KindProgramming,
	duckdb.ErrorTypeSyntax:               dberr.KindProgramming,
	duckdb.ErrorTypeCatalog:              dberr.KindProgramming,
	duckdb.ErrorTypeBinder:               dberr.KindProgramming,
	duckdb.ErrorTypeParameterNotResolved: dberr.KindProgramming,
	duckdb.ErrorTypeParameterNotAllowed:  dberr.KindProgramming,
	duckdb.ErrorTypeDependency:           dberr.KindProgramming,
	duckdb.ErrorTypeInvalidConfiguration: dberr.KindProgramming,

	duckdb.ErrorTypeNotImplemented: dberr.KindNotSupported,

	duckdb.ErrorTypeTransaction:   dberr.KindOperational,
	duckdb.ErrorTypeConnection:    dberr.KindOperational,
	duckdb.ErrorTypeIO:            dberr.KindOperational,
	duckdb.ErrorTypeInterrupt:     dberr.KindOperational,
	duckdb.ErrorTypeOutOfMemory:   dberr.KindOperational,
	duckdb.ErrorTypePermission:    dberr.KindOperational,
	duckdb.ErrorTypeSerialization: dberr.KindOperational,

	duckdb.ErrorTypeInternal: dberr.KindInternal,
	duckdb.ErrorTypeFatal:    dberr.KindInternal,
}

// Type returns the error type of a go-duckdb error.
func Type(err error) (duckdb.ErrorType, bool) {
	var de *duckdb.Error
	if errors.As(err, &de) {
		return de.Type, true
	}
	return 0, false
}

// Rules returns the error rules for go-duckdb.
func Rules() []dberr.Rule {
	return dberr.CodeRules(Type, errorTypes, dberr.KindDatabase)
}
