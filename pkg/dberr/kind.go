// Package dberr defines the canonical database error taxonomy and the
// remapper that reclassifies driver-native errors onto it.
//
// The hierarchy follows the DB-API:
//
//	Warning
//	Error
//	├── InterfaceError
//	└── DatabaseError
//	    ├── DataError
//	    ├── OperationalError
//	    ├── IntegrityError
//	    ├── InternalError
//	    ├── ProgrammingError
//	    └── NotSupportedError
//
// ValueError sits outside the tree. It reports bad values handed to the
// library by its caller, such as a missing bind value.
package dberr

import "fmt"

// Kind is a node in the canonical error hierarchy.
type Kind int

// Canonical error kinds.
const (
	KindUnknown Kind = iota
	KindWarning
	KindError
	KindInterface
	KindDatabase
	KindData
	KindOperational
	KindIntegrity
	KindInternal
	KindProgramming
	KindNotSupported
	KindValue
)

var kindNames = map[Kind]string{
	KindUnknown:      "UnknownError",
	KindWarning:      "Warning",
	KindError:        "Error",
	KindInterface:    "InterfaceError",
	KindDatabase:     "DatabaseError",
	KindData:         "DataError",
	KindOperational:  "OperationalError",
	KindIntegrity:    "IntegrityError",
	KindInternal:     "InternalError",
	KindProgramming:  "ProgrammingError",
	KindNotSupported: "NotSupportedError",
	KindValue:        "ValueError",
}

var kindParents = map[Kind]Kind{
	KindInterface:    KindError,
	KindDatabase:     KindError,
	KindData:         KindDatabase,
	KindOperational:  KindDatabase,
	KindIntegrity:    KindDatabase,
	KindInternal:     KindDatabase,
	KindProgramming:  KindDatabase,
	KindNotSupported: KindDatabase,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Parent returns the direct ancestor of k, or KindUnknown for a root.
func (k Kind) Parent() Kind {
	return kindParents[k]
}

// Depth returns the number of ancestors of k. Roots have depth 0.
func (k Kind) Depth() int {
	d := 0
	for p := k.Parent(); p != KindUnknown; p = p.Parent() {
		d++
	}
	return d
}

// IsA reports whether k is ancestor or descends from it.
func (k Kind) IsA(ancestor Kind) bool {
	for c := k; c != KindUnknown; c = c.Parent() {
		if c == ancestor {
			return true
		}
	}
	return false
}

// Kinds returns every canonical kind, roots first.
func Kinds() []Kind {
	return []Kind{
		KindWarning, KindError, KindValue,
		KindInterface, KindDatabase,
		KindData, KindOperational, KindIntegrity, KindInternal, KindProgramming, KindNotSupported,
	}
}

// ParseKind returns the kind with the given name (e.g. "IntegrityError").
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && k != KindUnknown {
			return k, true
		}
	}
	return KindUnknown, false
}
